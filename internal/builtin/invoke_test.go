package builtin

import (
	"testing"

	"github.com/wyshell/wyshell/internal/argv"
	"github.com/wyshell/wyshell/internal/redirect"
	"github.com/wyshell/wyshell/internal/registry"
)

func vec(args ...string) argv.Vector {
	v := make(argv.Vector, len(args))
	for i, a := range args {
		v[i] = argv.Arg{Text: a}
	}
	return v
}

func TestInvokeRunsRegisteredStaticBuiltin(t *testing.T) {
	reg := registry.New()
	reg.RegisterStatic("echo", echoMain)
	cb, ok := reg.Lookup("echo")
	if !ok {
		t.Fatal("expected echo to resolve")
	}

	inv := NewInvoker(reg)
	res, err := inv.Invoke(cb, Request{Argv: vec("echo", "hi")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != 0 {
		t.Fatalf("unexpected exit code %d", res.ExitCode)
	}
}

func TestInvokeCoercesPipeStdoutToBuffer(t *testing.T) {
	reg := registry.New()
	reg.RegisterStatic("echo", echoMain)
	cb, _ := reg.Lookup("echo")

	inv := NewInvoker(reg)
	res, err := inv.Invoke(cb, Request{
		Argv:   vec("echo", "piped"),
		Stdout: redirect.StdoutSpec{Kind: redirect.StdoutToPipe},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Buffer == nil {
		t.Fatal("expected a buffer-backed result when stdout requested a pipe")
	}

	contents := res.Buffer.ForwardToNext()
	buf := make([]byte, 64)
	n, _ := contents.Read(buf)
	if string(buf[:n]) != "piped\n" {
		t.Fatalf("unexpected buffer contents %q", string(buf[:n]))
	}
}
