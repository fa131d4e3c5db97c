package argv

import "testing"

func TestCommandLineQuoting(t *testing.T) {
	v := Vector{
		{Text: "echo"},
		{Text: "hello world", Quoted: true},
		{Text: "plain"},
	}
	got := v.CommandLine()
	want := `echo "hello world" plain`
	if got != want {
		t.Fatalf("CommandLine() = %q, want %q", got, want)
	}
}

func TestWithFirstDoesNotMutateOriginal(t *testing.T) {
	v := Vector{{Text: "a"}, {Text: "b"}}
	v2 := v.WithFirst("z")
	if v[0].Text != "a" {
		t.Fatalf("original mutated: %q", v[0].Text)
	}
	if v2[0].Text != "z" || v2[1].Text != "b" {
		t.Fatalf("unexpected copy: %+v", v2)
	}
}

func TestPrepend(t *testing.T) {
	v := Vector{{Text: "script.bat"}, {Text: "arg1"}}
	got := v.Prepend("cmd.exe", "/c")
	want := []string{"cmd.exe", "/c", "script.bat", "arg1"}
	gotStrs := got.Strings()
	for i, w := range want {
		if gotStrs[i] != w {
			t.Fatalf("Prepend()[%d] = %q, want %q", i, gotStrs[i], w)
		}
	}
}

func TestCommandContextCloneIsIndependent(t *testing.T) {
	c := CommandContext{Vector: Vector{{Text: "a"}}, CurrentIndex: 0}
	c2 := c.Clone()
	c2.Vector[0].Text = "b"
	if c.Vector[0].Text != "a" {
		t.Fatalf("clone aliased original vector")
	}
}
