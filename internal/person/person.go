package person

import (
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the birth date format: two-digit day and month, four-digit year.
const DateLayout = "02.01.2006"

// Person is one employee record. Persons are equal when their ids match.
type Person struct {
	id        int
	name      string
	gender    Gender
	birthDate time.Time
	division  *Division
	salary    float64
}

// New assembles a Person from already-typed values.
func New(id int, name string, gender Gender, birthDate time.Time, division *Division, salary float64) *Person {
	return &Person{
		id:        id,
		name:      name,
		gender:    gender,
		birthDate: birthDate,
		division:  division,
		salary:    salary,
	}
}

func (p *Person) ID() int              { return p.id }
func (p *Person) Name() string         { return p.name }
func (p *Person) Gender() Gender       { return p.gender }
func (p *Person) BirthDate() time.Time { return p.birthDate }
func (p *Person) Division() *Division  { return p.division }
func (p *Person) Salary() float64      { return p.salary }

// Equal compares persons by id only.
func (p *Person) Equal(other *Person) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.id == other.id
}

// WithDivision returns a copy of p that references d.
func (p *Person) WithDivision(d *Division) *Person {
	cp := *p
	cp.division = d
	return &cp
}

func (p *Person) String() string {
	return fmt.Sprintf("Person{id=%d, name='%s', gender=%s, birthDate=%s, division=%v, salary=%s}",
		p.id, p.name, p.gender, p.birthDate.Format(DateLayout), p.division,
		strconv.FormatFloat(p.salary, 'f', -1, 64))
}
