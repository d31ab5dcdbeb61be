package main

import (
	"strings"
	"time"
	"unicode"

	"github.com/brianvoe/gofakeit/v6"

	"financetracker/internal/core"
	"financetracker/internal/services"
)

const demoPassword = "demo-password-123"

// demoAccount invents a registration form that passes validation.
func demoAccount(f *gofakeit.Faker) services.RegistrationForm {
	username := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, f.Username()) + f.DigitN(4)
	return services.RegistrationForm{
		Username:  username,
		FirstName: f.FirstName(),
		LastName:  f.LastName(),
		Email:     username + "@example.com",
		Password1: demoPassword,
		Password2: demoPassword,
	}
}

// demoTransactions produces a salary on the first of each month plus perMonth
// expenses spread over the months ending with today's month. Days beyond
// today are skipped.
func demoTransactions(f *gofakeit.Faker, cats []core.Category, today core.Date, months, perMonth int) []core.Transaction {
	var salary int64
	var expenses []core.Category
	for _, c := range cats {
		if c.Name == "Salary" {
			salary = c.ID
			continue
		}
		expenses = append(expenses, c)
	}

	first := core.NewDate(today.Year(), today.Month(), 1)
	var out []core.Transaction
	for m := months - 1; m >= 0; m-- {
		month := core.Date{Time: first.AddDate(0, -m, 0)}
		days := month.AddDate(0, 1, -1).Day()

		if salary != 0 {
			out = append(out, core.Transaction{
				Type:        core.Income,
				Amount:      core.Money{Cents: int64(f.Number(250000, 450000))},
				Date:        month,
				CategoryID:  salary,
				Description: f.Company() + " payroll",
			})
		}
		if len(expenses) == 0 {
			continue
		}
		for i := 0; i < perMonth; i++ {
			day := core.NewDate(month.Year(), month.Month(), f.Number(1, days))
			if day.After(today.Time) {
				continue
			}
			c := expenses[f.Number(0, len(expenses)-1)]
			out = append(out, core.Transaction{
				Type:        core.Expense,
				Amount:      core.Money{Cents: int64(f.Number(150, 25000))},
				Date:        day,
				CategoryID:  c.ID,
				Description: f.Sentence(3),
			})
		}
	}
	return out
}

// demoBudgets puts a monthly limit on every expense category.
func demoBudgets(f *gofakeit.Faker, cats []core.Category) []core.Budget {
	var out []core.Budget
	for _, c := range cats {
		if c.Name == "Salary" {
			continue
		}
		out = append(out, core.Budget{
			CategoryID: c.ID,
			Limit:      core.Money{Cents: int64(f.Number(200, 800)) * 100},
			Period:     core.Monthly,
		})
	}
	return out
}

func today() core.Date {
	return core.DateOf(time.Now())
}
