package http

import (
	"errors"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"financetracker/internal/core"
)

func TestParseMonthParams(t *testing.T) {
	today := core.NewDate(2024, time.March, 15)
	tests := []struct {
		name      string
		query     string
		wantYear  int
		wantMonth time.Month
	}{
		{"defaults", "", 2024, time.March},
		{"explicit", "year=2023&month=11", 2023, time.November},
		{"month only", "month=1", 2024, time.January},
		{"month out of range", "year=2022&month=13", 2022, time.March},
		{"garbage", "year=abc&month=x", 2024, time.March},
		{"year zero", "year=0", 2024, time.March},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			got := ParseMonthParams(q, today)
			if got.Year != tt.wantYear || got.Month != tt.wantMonth {
				t.Fatalf("got %d-%s, want %d-%s", got.Year, got.Month, tt.wantYear, tt.wantMonth)
			}
		})
	}
}

func TestParseTransactionQuery(t *testing.T) {
	tests := []struct {
		query    string
		wantType core.TransactionType
		wantCat  int64
		wantPage int
	}{
		{"", "", 0, 1},
		{"type=income&category=7&page=3", core.Income, 7, 3},
		{"type=Transfer&category=-1&page=0", "", 0, 1},
		{"category=abc&page=two", "", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			typ, cat, page := ParseTransactionQuery(q)
			if typ != tt.wantType || cat != tt.wantCat || page != tt.wantPage {
				t.Fatalf("got (%q, %d, %d)", typ, cat, page)
			}
		})
	}
}

func newParser(t *testing.T, body string) *RequestBodyParser {
	t.Helper()
	p := NewRequestBodyParser(httptest.NewRequest("POST", "/", strings.NewReader(body)))
	return p
}

func TestRequestBodyParser(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		p := newParser(t, `{"name":"  Books\u0000 ","amount":12.5,"flag":true,"nested":{"a":1}}`)
		if err := p.Parse(); err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if !p.IsJSON() {
			t.Fatal("expected JSON")
		}
		if p.Get("name") != "Books" || p.Get("amount") != "12.5" || p.Get("flag") != "true" {
			t.Fatalf("got name=%q amount=%q flag=%q", p.Get("name"), p.Get("amount"), p.Get("flag"))
		}
		if p.Get("nested") != "" || p.Get("missing") != "" {
			t.Fatal("non-scalar and missing values should be empty")
		}
	})

	t.Run("form", func(t *testing.T) {
		p := newParser(t, "name=Books&description=paper+backs")
		if err := p.Parse(); err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if p.IsJSON() || p.Get("description") != "paper backs" {
			t.Fatalf("form parse wrong: %q", p.Get("description"))
		}
	})

	t.Run("raw keeps whitespace", func(t *testing.T) {
		p := newParser(t, `{"password":"  s3cret\t "}`)
		if err := p.Parse(); err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if p.Raw("password") != "  s3cret\t " || p.Get("password") != "s3cret" {
			t.Fatalf("raw=%q get=%q", p.Raw("password"), p.Get("password"))
		}

		p = newParser(t, "password=+pass+word+")
		if err := p.Parse(); err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if p.Raw("password") != " pass word " || p.Raw("missing") != "" {
			t.Fatalf("raw form=%q", p.Raw("password"))
		}
	})

	t.Run("empty", func(t *testing.T) {
		p := newParser(t, "   ")
		if err := p.Parse(); err != nil || p.Get("name") != "" {
			t.Fatalf("empty body: %v", err)
		}
	})

	for _, body := range []string{`{"name":`, `["a"]`, "a=%zz"} {
		t.Run("malformed "+body, func(t *testing.T) {
			p := newParser(t, body)
			if err := p.Parse(); !errors.Is(err, errMalformedBody) {
				t.Fatalf("want errMalformedBody, got %v", err)
			}
			if err := p.Parse(); !errors.Is(err, errMalformedBody) {
				t.Fatal("second Parse should return the same error")
			}
		})
	}
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	return ve.Field
}

func TestParseTransaction(t *testing.T) {
	p := newParser(t, `{"type":"expense","amount":"12,30","date":"2024-03-05","category":"4","description":"lunch"}`)
	if err := p.Parse(); err != nil {
		t.Fatal(err)
	}
	tx, err := ParseTransaction(p)
	if err != nil {
		t.Fatalf("ParseTransaction: %v", err)
	}
	if tx.Type != core.Expense || tx.Amount.Cents != 1230 || tx.Date.String() != "2024-03-05" || tx.CategoryID != 4 || tx.Description != "lunch" {
		t.Fatalf("unexpected transaction %+v", tx)
	}

	tests := []struct {
		body  string
		field string
	}{
		{`{"amount":"1","date":"2024-03-05","category":1}`, "type"},
		{`{"type":"Income","date":"2024-03-05","category":1}`, "amount"},
		{`{"type":"Income","amount":"abc","date":"2024-03-05","category":1}`, "amount"},
		{`{"type":"Income","amount":"100000000","date":"2024-03-05","category":1}`, "amount"},
		{`{"type":"Income","amount":"1","category":1}`, "date"},
		{`{"type":"Income","amount":"1","date":"2024-02-30","category":1}`, "date"},
		{`{"type":"Income","amount":"1","date":"2024-03-05"}`, "category"},
		{`{"type":"Income","amount":"1","date":"2024-03-05","category":"x"}`, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.field+" "+tt.body, func(t *testing.T) {
			p := newParser(t, tt.body)
			if err := p.Parse(); err != nil {
				t.Fatal(err)
			}
			_, err := ParseTransaction(p)
			if got := fieldOf(t, err); got != tt.field {
				t.Fatalf("field = %q, want %q", got, tt.field)
			}
		})
	}
}

func TestParseBudget(t *testing.T) {
	p := newParser(t, "category=3&limit=500")
	if err := p.Parse(); err != nil {
		t.Fatal(err)
	}
	b, err := ParseBudget(p)
	if err != nil {
		t.Fatalf("ParseBudget: %v", err)
	}
	if b.CategoryID != 3 || b.Limit.Cents != 50000 || b.Period != core.Monthly {
		t.Fatalf("unexpected budget %+v", b)
	}

	p = newParser(t, "category=3&limit=500&period=fortnightly")
	if err := p.Parse(); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseBudget(p); fieldOf(t, err) != "period" {
		t.Fatal("expected period error")
	}
}
