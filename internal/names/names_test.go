package names

import (
	"reflect"
	"strings"
	"testing"
)

func TestClean(t *testing.T) {
	cases := []struct{ in, want string }{
		{"ORIKU (ex-FOO)", "ORIKU"},
		{"ILIRIA P 131", "ILIRIA"},
		{"LIBURNA  Y12 ", "LIBURNA"},
		{"A 123", ""},
		{"  SHKODRA\t", "SHKODRA"},
	}
	for _, c := range cases {
		if got := Clean(c.in); got != c.want {
			t.Fatalf("Clean(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestValid(t *testing.T) {
	good := []string{"ILIRIA", "D'ARTAGNAN", "SEA-HAWK 2", "WINGATE", "BUTRINTI", "FOOCLASS"}
	for _, s := range good {
		if !Valid(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	bad := []string{
		"", "AB", "TYPE 22 CLASS", "CLASS", "SEA-CLASS", "PATROL CRAFT", "COAST GUARD",
		"ALPHA!", "Alpha", "123", "PB 12", "ALPHA/BRAVO",
	}
	for _, s := range bad {
		if Valid(s) {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}

func TestFromTable(t *testing.T) {
	rows := [][]string{
		{"Name", "No", "Builders"},
		{"ILIRIA", "P 131", "Damen"},
		{"ORIKU (ex-FOO)", "P 132", "Damen"},
		{"P 133", ""},
		{"Patrol boat"},
		{},
		{"LISSUS"},
	}
	got := FromTable(rows)
	want := []string{"ILIRIA", "ORIKU", "LISSUS"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FromTable = %v, want %v", got, want)
	}
}

func TestFromTable_HeaderOnly(t *testing.T) {
	if got := FromTable([][]string{{"ALPHA"}}); got != nil {
		t.Fatalf("single-row table must yield nothing, got %v", got)
	}
	if got := FromTable(nil); got != nil {
		t.Fatalf("nil table must yield nothing, got %v", got)
	}
}

func TestFromText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"single run", "ALPHA BRAVO  CHARLIE", []string{"ALPHA BRAVO CHARLIE"}},
		{"separated", "ALPHA, BRAVO (EX-ZULU), D'ARTAGNAN P 12", []string{"ALPHA", "BRAVO", "D'ARTAGNAN"}},
		{"class suffix", "SOME CLASS", nil},
		{"blacklisted run", "PATROL BOATS: ALPHA", []string{"ALPHA"}},
		{"mixed case", "Alpha Bravo", nil},
		{"too long", strings.Repeat("ALPHA ", 40), nil},
		{"pennant inside run", "ALPHA P131", []string{"ALPHA"}},
	}
	for _, c := range cases {
		got := FromText(c.in)
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("%s: FromText(%q) = %v, want %v", c.name, c.in, got, c.want)
		}
	}
}
