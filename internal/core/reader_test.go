package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/roster/internal/person"
)

const header = "id;name;gender;BirthDate;Division;Salary\n"

func TestParse_EndToEnd(t *testing.T) {
	input := header + "28281;Aahan;M;01.01.1995;Engineering;4800.0\n"

	res, err := Parse(context.Background(), strings.NewReader(input), Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(res.People) != 1 {
		t.Fatalf("len(People) = %d, want 1", len(res.People))
	}
	p := res.People[0]
	if p.ID() != 28281 || p.Name() != "Aahan" || p.Gender() != person.Male || p.Salary() != 4800.0 {
		t.Errorf("person = %v", p)
	}
	if p.Division().Name() != "Engineering" {
		t.Errorf("Division().Name() = %q, want %q", p.Division().Name(), "Engineering")
	}
	if res.Lines != 1 {
		t.Errorf("Lines = %d, want 1", res.Lines)
	}
	if res.BytesRead != int64(len(input)) {
		t.Errorf("BytesRead = %d, want %d", res.BytesRead, len(input))
	}
}

func TestParseFile(t *testing.T) {
	res, err := ParseFile(context.Background(), filepath.Join("testdata", "people.csv"), Options{})
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	if len(res.People) != 5 {
		t.Fatalf("len(People) = %d, want 5", len(res.People))
	}
	if got := res.People[1].Name(); got != "Aaron; Jr" {
		t.Errorf("quoted name = %q, want %q", got, "Aaron; Jr")
	}

	wantDivisions := []string{"Engineering", "Sales", "HR"}
	if len(res.Divisions) != len(wantDivisions) {
		t.Fatalf("len(Divisions) = %d, want %d", len(res.Divisions), len(wantDivisions))
	}
	for i, name := range wantDivisions {
		d := res.Divisions[i]
		if d.Name() != name || d.ID() != i+1 {
			t.Errorf("Divisions[%d] = %v, want id=%d name=%s", i, d, i+1, name)
		}
	}

	if res.People[0].Division() != res.People[2].Division() {
		t.Error("Engineering records should share one division instance")
	}
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(context.Background(), filepath.Join("testdata", "nonexistent.csv"), Options{})
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("error = %v, want ErrSourceUnavailable", err)
	}
}

func TestParse_HeaderOnlyAndEmpty(t *testing.T) {
	for _, input := range []string{"", header, "not;a;real;header"} {
		res, err := Parse(context.Background(), strings.NewReader(input), Options{})
		if err != nil {
			t.Errorf("Parse(%q) error = %v", input, err)
			continue
		}
		if len(res.People) != 0 || res.Lines != 0 {
			t.Errorf("Parse(%q) = %d people, %d lines; want none", input, len(res.People), res.Lines)
		}
	}
}

func TestParse_AbortReportsLine(t *testing.T) {
	input := header +
		"1;A;M;01.01.1990;IT;100\n" +
		"2;B;X;01.01.1990;IT;100\n" +
		"3;C;F;01.01.1990;IT;100\n"

	res, err := Parse(context.Background(), strings.NewReader(input), Options{Policy: PolicyAbort})
	if res != nil {
		t.Errorf("Parse() returned a result alongside an abort")
	}

	var le *LineError
	if !errors.As(err, &le) {
		t.Fatalf("error = %v, want *LineError", err)
	}
	if le.Line != 3 {
		t.Errorf("Line = %d, want 3", le.Line)
	}
	if le.Text != "2;B;X;01.01.1990;IT;100" {
		t.Errorf("Text = %q", le.Text)
	}
	if !errors.Is(err, person.ErrMalformedRecord) || !errors.Is(err, person.ErrInvalidValue) {
		t.Errorf("error %v should match ErrMalformedRecord and ErrInvalidValue", err)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("Error() = %q, want line number", err.Error())
	}
}

func TestParse_CollectPolicy(t *testing.T) {
	input := header +
		"1;A;M;01.01.1990;IT;100\n" +
		"bad line\n" +
		"3;C;F;31.04.1990;HR;100\n" +
		"4;D;F;01.01.1990;Sales;abc\n" +
		"5;E;F;01.01.1990;IT;200\n"

	res, err := Parse(context.Background(), strings.NewReader(input), Options{Policy: PolicyCollect})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(res.People) != 2 {
		t.Errorf("len(People) = %d, want 2", len(res.People))
	}
	if res.Lines != 5 {
		t.Errorf("Lines = %d, want 5", res.Lines)
	}

	wantLines := []int{3, 4, 5}
	if len(res.Failed) != len(wantLines) {
		t.Fatalf("len(Failed) = %d, want %d", len(res.Failed), len(wantLines))
	}
	for i, want := range wantLines {
		if res.Failed[i].Line != want {
			t.Errorf("Failed[%d].Line = %d, want %d", i, res.Failed[i].Line, want)
		}
	}

	// Failed lines never register divisions.
	if len(res.Divisions) != 1 || res.Divisions[0].Name() != "IT" {
		t.Errorf("Divisions = %v, want [IT]", res.Divisions)
	}
}

func TestParse_BOMAndCRLF(t *testing.T) {
	input := "\xEF\xBB\xBF" + strings.ReplaceAll(header+"1;A;M;01.01.1990;IT;100\n2;B;F;02.02.1990;HR;200", "\n", "\r\n")

	res, err := Parse(context.Background(), strings.NewReader(input), Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(res.People) != 2 {
		t.Fatalf("len(People) = %d, want 2", len(res.People))
	}
	if got := res.People[1].Salary(); got != 200 {
		t.Errorf("last salary = %v, want 200 (CR must be stripped)", got)
	}
}

func TestParse_InvalidUTF8IsReplaced(t *testing.T) {
	input := header + "1;Jos\xff;M;01.01.1990;IT;100\n"

	res, err := Parse(context.Background(), strings.NewReader(input), Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := res.People[0].Name(); got != "Jos�" {
		t.Errorf("Name() = %q, want replacement character", got)
	}
}

func TestParse_CustomDelimiter(t *testing.T) {
	input := "id,name,gender,date,division,salary\n1,\"Doe, J\",M,01.01.1990,IT,100\n"

	res, err := Parse(context.Background(), strings.NewReader(input), Options{Delimiter: ','})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := res.People[0].Name(); got != "Doe, J" {
		t.Errorf("Name() = %q, want %q", got, "Doe, J")
	}
}

func TestParse_LineTooLong(t *testing.T) {
	input := header + "1;" + strings.Repeat("x", 200) + ";M;01.01.1990;IT;100\n"

	_, err := Parse(context.Background(), strings.NewReader(input), Options{MaxLineSize: 64})
	if !errors.Is(err, ErrLineTooLong) {
		t.Fatalf("error = %v, want ErrLineTooLong", err)
	}
}

func TestParse_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Parse(ctx, strings.NewReader(generateCSV(ContextCheckInterval*2, 3)), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyAbort, false},
		{"abort", PolicyAbort, false},
		{"collect", PolicyCollect, false},
		{" Collect ", PolicyCollect, false},
		{"skip", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParsePolicy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// generateCSV returns a header plus n valid lines spread over divisions
// distinct division names.
func generateCSV(n, divisions int) string {
	var b strings.Builder
	b.WriteString(header)
	for i := 0; i < n; i++ {
		gender := "M"
		if i%2 == 1 {
			gender = "F"
		}
		fmt.Fprintf(&b, "%d;Person %d;%s;%02d.%02d.19%02d;Div-%d;%d.5\n",
			i+1, i, gender, i%28+1, i%12+1, i%100, (i*7)%divisions, 1000+i)
	}
	return b.String()
}
