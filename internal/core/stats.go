package core

import "github.com/JonMunkholm/roster/internal/person"

// Statistics summarises a set of people.
type Statistics struct {
	Total           int     `json:"total"`
	Male            int     `json:"male"`
	Female          int     `json:"female"`
	UniqueDivisions int     `json:"uniqueDivisions"`
	AverageSalary   float64 `json:"averageSalary"`
	MaxSalary       float64 `json:"maxSalary"`
	MinSalary       float64 `json:"minSalary"`
}

// Summarize computes Statistics for people. Salary figures are zero when
// people is empty. Divisions are counted by name.
func Summarize(people []*person.Person) Statistics {
	stats := Statistics{Total: len(people)}
	if len(people) == 0 {
		return stats
	}

	divisions := make(map[string]struct{})
	var sum float64
	stats.MaxSalary = people[0].Salary()
	stats.MinSalary = people[0].Salary()

	for _, p := range people {
		switch p.Gender() {
		case person.Male:
			stats.Male++
		case person.Female:
			stats.Female++
		}

		if d := p.Division(); d != nil {
			divisions[d.Name()] = struct{}{}
		}

		s := p.Salary()
		sum += s
		stats.MaxSalary = max(stats.MaxSalary, s)
		stats.MinSalary = min(stats.MinSalary, s)
	}

	stats.UniqueDivisions = len(divisions)
	stats.AverageSalary = sum / float64(len(people))
	return stats
}

// Top returns the first n people in file order. A negative n yields none.
func Top(people []*person.Person, n int) []*person.Person {
	n = max(0, min(n, len(people)))
	out := make([]*person.Person, n)
	copy(out, people[:n])
	return out
}
