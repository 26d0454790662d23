package testutil

import (
	"strings"
	"sync"

	"github.com/brianvoe/gofakeit/v7"
)

// Faker produces plausible firm, client and matter data. A fixed seed
// gives the same sequence every run; it is safe for concurrent use.
type Faker struct {
	mu sync.Mutex
	f  *gofakeit.Faker
}

// NewFaker seeds a Faker; seed 0 picks a random seed
func NewFaker(seed uint64) *Faker {
	return &Faker{f: gofakeit.New(seed)}
}

func (f *Faker) with(fn func(*gofakeit.Faker) string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(f.f)
}

// FirmName looks like "Cabinet Dupont"
func (f *Faker) FirmName() string {
	return f.with(func(g *gofakeit.Faker) string { return "Cabinet " + g.LastName() })
}

// CompanyName is a corporate client
func (f *Faker) CompanyName() string {
	return f.with(func(g *gofakeit.Faker) string { return g.Company() })
}

func (f *Faker) FullName() string {
	return f.with(func(g *gofakeit.Faker) string { return g.Name() })
}

// Email is unique enough for the unique index on profiles.email
func (f *Faker) Email() string {
	return f.with(func(g *gofakeit.Faker) string {
		local := strings.Map(func(r rune) rune {
			if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, strings.ToLower(g.Username()))
		return local + "." + strings.ToLower(g.LetterN(6)) + "@example.com"
	})
}

// MobileNumber is a valid Cameroonian MTN or Orange MSISDN without prefix
func (f *Faker) MobileNumber() string {
	return f.with(func(g *gofakeit.Faker) string {
		return g.RandomString([]string{"67", "68", "65", "69"}) + g.Numerify("#######")
	})
}

func (f *Faker) City() string {
	return f.with(func(g *gofakeit.Faker) string {
		return g.RandomString([]string{"Yaoundé", "Douala", "Bafoussam", "Garoua", "Bamenda"})
	})
}

// CaseTitle is a short matter title
func (f *Faker) CaseTitle() string {
	return f.with(func(g *gofakeit.Faker) string {
		return g.RandomString([]string{"Recouvrement", "Litige", "Contentieux", "Conseil"}) + " " + g.Company()
	})
}
