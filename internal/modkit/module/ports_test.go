package module

import (
	"context"
	"strings"
	"testing"

	phttp "stealthbridge/internal/platform/net/http"
)

type Prover interface{ Prove(context.Context) error }

type Keys interface{ Sign(msg []byte) []byte }

type prover struct{}

func (prover) Prove(context.Context) error { return nil }

type fakeModule struct {
	name  string
	ports any
}

func (m fakeModule) Name() string             { return m.name }
func (m fakeModule) Ports() any               { return m.ports }
func (m fakeModule) MountRoutes(phttp.Router) {}

type enginePorts struct {
	hidden Prover
	Engine Prover
	Keys   Keys
}

func TestPortsOf(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		ports  any
		wantOK bool
	}{
		{"nil ports", nil, false},
		{"ports is the port", prover{}, true},
		{"exported field", enginePorts{Engine: prover{}}, true},
		{"only unexported field", enginePorts{hidden: prover{}}, false},
		{"pointer is not walked", &enginePorts{Engine: prover{}}, false},
		{"not a struct", 42, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, ok := PortsOf[Prover](fakeModule{name: "engine", ports: tt.ports})
			if ok != tt.wantOK || (ok && p == nil) {
				t.Fatalf("ok=%v p=%v", ok, p)
			}
		})
	}
}

func TestPortsOf_StructType(t *testing.T) {
	t.Parallel()
	in := enginePorts{Engine: prover{}}
	got, ok := PortsOf[enginePorts](fakeModule{ports: in})
	if !ok || got.Engine == nil {
		t.Fatalf("ok=%v got=%+v", ok, got)
	}
}

func TestMustPortsOf(t *testing.T) {
	t.Parallel()
	m := fakeModule{name: "membership", ports: enginePorts{Engine: prover{}}}
	if MustPortsOf[Prover](m) == nil {
		t.Fatalf("expected a prover")
	}

	defer func() {
		msg, _ := recover().(string)
		if !strings.Contains(msg, "membership") || !strings.Contains(msg, "requested port not found") {
			t.Fatalf("panic = %q", msg)
		}
	}()
	MustPortsOf[Keys](m)
}
