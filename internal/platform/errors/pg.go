package errors

import (
	stderrs "errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// sqlStates maps the SQLSTATEs the repositories can raise; any other
// postgres error is ErrorCodeDB
var sqlStates = map[string]ErrorCode{
	"23505": ErrorCodeDuplicateKey,    // unique_violation
	"23503": ErrorCodeInvalidArgument, // foreign_key_violation
	"22001": ErrorCodeInvalidArgument, // string_data_right_truncation
	"22P02": ErrorCodeInvalidArgument, // invalid_text_representation
	"22003": ErrorCodeInvalidArgument, // numeric_value_out_of_range
	"23502": ErrorCodeValidation,      // not_null_violation
	"23514": ErrorCodeValidation,      // check_violation
	"25006": ErrorCodeUnavailable,     // read_only_sql_transaction
	"57P03": ErrorCodeUnavailable,     // cannot_connect_now
}

func pgError(err error) (*pgconn.PgError, bool) {
	var pe *pgconn.PgError
	ok := stderrs.As(err, &pe)
	return pe, ok
}

func sqlStateCode(pe *pgconn.PgError) ErrorCode {
	if c, ok := sqlStates[pe.Code]; ok {
		return c
	}
	return ErrorCodeDB
}

// IsForeignKeyViolation reports whether a postgres error anywhere in err's
// chain is a foreign key violation
func IsForeignKeyViolation(err error) bool {
	pe, ok := pgError(err)
	return ok && pe.Code == "23503"
}

// FromPostgres wraps err under msg with the code its SQLSTATE maps to;
// non postgres errors get ErrorCodeDB and nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code := ErrorCodeDB
	if pe, ok := pgError(err); ok {
		code = sqlStateCode(pe)
	}
	return Wrap(err, code, msg)
}
