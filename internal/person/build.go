package person

import (
	"strconv"
	"strings"
	"time"
)

// MinFields is the number of positional fields a record needs.
const MinFields = 6

// Field positions within a record.
const (
	fieldID = iota
	fieldName
	fieldGender
	fieldBirthDate
	fieldDivision
	fieldSalary
)

// Build coerces fields into a Person, resolving the division through reg.
//
// Fields are checked in positional order and the first failure is
// returned as a *RecordError. reg gains an entry only when the whole
// record is accepted. Fields past the sixth are ignored.
func Build(fields []string, reg Registry) (*Person, error) {
	if len(fields) < MinFields {
		return nil, malformed("fields", "", "wrong field count: got "+strconv.Itoa(len(fields))+", want at least "+strconv.Itoa(MinFields), nil)
	}

	rawID := strings.TrimSpace(fields[fieldID])
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return nil, malformed("id", rawID, "invalid integer", err)
	}

	name := strings.TrimSpace(fields[fieldName])

	rawGender := strings.TrimSpace(fields[fieldGender])
	gender, err := ParseGender(rawGender)
	if err != nil {
		return nil, malformed("gender", rawGender, "invalid gender", err)
	}

	rawDate := strings.TrimSpace(fields[fieldBirthDate])
	birthDate, err := time.Parse(DateLayout, rawDate)
	if err != nil {
		return nil, malformed("birth date", rawDate, "invalid date, want dd.mm.yyyy", err)
	}

	rawSalary := strings.TrimSpace(fields[fieldSalary])
	salary, err := strconv.ParseFloat(rawSalary, 64)
	if err != nil {
		return nil, malformed("salary", rawSalary, "invalid number", err)
	}

	division := reg.LookupOrCreate(strings.TrimSpace(fields[fieldDivision]))

	return New(id, name, gender, birthDate, division, salary), nil
}
