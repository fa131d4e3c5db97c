package launcher

import (
	"testing"

	"github.com/wyshell/wyshell/internal/argv"
)

func vec(args ...string) argv.Vector {
	v := make(argv.Vector, len(args))
	for i, a := range args {
		v[i] = argv.Arg{Text: a}
	}
	return v
}

func TestClassifyDirectExecutable(t *testing.T) {
	if classify("notepad.exe") != routeDirect {
		t.Fatal("expected routeDirect for .exe")
	}
	if classify("notepad") != routeDirect {
		t.Fatal("expected routeDirect for no extension")
	}
}

func TestClassifyBuiltinProbe(t *testing.T) {
	if classify("DIR.COM") != routeBuiltinProbe {
		t.Fatal("expected routeBuiltinProbe for .com, case-insensitively")
	}
}

func TestClassifyShellScript(t *testing.T) {
	if classify("build.ys") != routeShellScript {
		t.Fatal("expected routeShellScript for .ys")
	}
}

func TestClassifyLegacyBatch(t *testing.T) {
	if classify("run.bat") != routeLegacyBatch {
		t.Fatal("expected routeLegacyBatch for .bat")
	}
	if classify("run.cmd") != routeLegacyBatch {
		t.Fatal("expected routeLegacyBatch for .cmd")
	}
}

func TestClassifyURLGoesShellExecute(t *testing.T) {
	if classify("https://example.com") != routeShellExecute {
		t.Fatal("expected routeShellExecute for a URL-style argv[0]")
	}
}

func TestClassifyUnknownSuffixGoesShellExecute(t *testing.T) {
	if classify("report.docx") != routeShellExecute {
		t.Fatal("expected routeShellExecute for an unassociated suffix")
	}
}

func TestPrepareBuiltinProbeReturnsErrTryBuiltin(t *testing.T) {
	_, err := Prepare(Request{Argv: vec("dir.com")})
	if err != ErrTryBuiltin {
		t.Fatalf("expected ErrTryBuiltin, got %v", err)
	}
}

func TestPrepareShellScriptPrependsInterpreter(t *testing.T) {
	req, err := Prepare(Request{Argv: vec("build.ys", "release")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Argv.First() != "ys" {
		t.Fatalf("expected ys prepended, got %q", req.Argv.First())
	}
	if got := req.Argv.Strings(); len(got) != 3 || got[1] != "build.ys" || got[2] != "release" {
		t.Fatalf("unexpected argv: %v", got)
	}
}

func TestPrepareLegacyBatchPrependsCmdAndSlashC(t *testing.T) {
	req, err := Prepare(Request{Argv: vec("run.bat")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := req.Argv.Strings()
	if len(got) != 3 || got[0] != "cmd.exe" || got[1] != "/c" || got[2] != "run.bat" {
		t.Fatalf("unexpected argv: %v", got)
	}
}

func TestPrepareLegacyBatchOnlyCapturesEnvironmentWhenWaitRequested(t *testing.T) {
	req, err := Prepare(Request{Argv: vec("run.bat"), Flags: Flags{WaitForCompletion: false}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Flags.CaptureEnvironmentOnExit {
		t.Fatal("should not capture environment without WaitForCompletion")
	}

	req, err = Prepare(Request{Argv: vec("run.bat"), Flags: Flags{WaitForCompletion: true}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !req.Flags.CaptureEnvironmentOnExit {
		t.Fatal("expected environment capture to turn on when WaitForCompletion is set")
	}
}

func TestPrepareShellExecuteReturnsErrShellExecute(t *testing.T) {
	_, err := Prepare(Request{Argv: vec("https://example.com")})
	var target *ErrShellExecute
	if err == nil {
		t.Fatal("expected an error")
	}
	if e, ok := err.(*ErrShellExecute); !ok {
		t.Fatalf("expected *ErrShellExecute, got %T", err)
	} else {
		target = e
	}
	if target.Reason == "" {
		t.Fatal("expected a non-empty reason")
	}
}

func TestPrepareEmptyArgvErrors(t *testing.T) {
	_, err := Prepare(Request{Argv: vec()})
	if err == nil {
		t.Fatal("expected an error for an empty argument vector")
	}
}

func TestPumpDoneClosedWithoutPump(t *testing.T) {
	h := &Handle{}
	select {
	case <-h.PumpDone():
	default:
		t.Fatal("expected PumpDone to be immediately closed when no pump was started")
	}
}
