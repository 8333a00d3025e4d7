package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bookkeeping/internal/core"
)

func newParser(contentType, body string) *RequestBodyParser {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return NewRequestBodyParser(req)
}

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		key         string
		want        string
		wantJSON    bool
		wantErr     bool
	}{
		{"json string", "application/json", `{"category":"  餐饮 "}`, "category", "餐饮", true, false},
		{"json number", "application/json", `{"amount":12.5}`, "amount", "12.5", true, false},
		{"json without header", "", `{"note":"hi"}`, "note", "hi", true, false},
		{"json missing key", "application/json", `{"note":"hi"}`, "category", "", true, false},
		{"json null", "application/json", `{"note":null}`, "note", "", true, false},
		{"form", "application/x-www-form-urlencoded", "category=%E9%A4%90&amount=3", "amount", "3", false, false},
		{"control characters stripped", "application/x-www-form-urlencoded", "note=a%00b", "note", "ab", false, false},
		{"empty body", "", "", "anything", "", false, false},
		{"broken json", "application/json", `{"a":`, "a", "", false, true},
		{"json array", "application/json", `[1,2]`, "a", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(tt.contentType, tt.body)
			err := p.Parse()
			if tt.wantErr {
				if !errors.Is(err, errMalformedBody) {
					t.Fatalf("Parse() error = %v, want errMalformedBody", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := p.Get(tt.key); got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
			if p.IsJSON() != tt.wantJSON {
				t.Errorf("IsJSON() = %v, want %v", p.IsJSON(), tt.wantJSON)
			}
		})
	}
}

func TestParseDraft(t *testing.T) {
	today := time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		body    string
		want    core.Draft
		wantErr error
	}{
		{
			name: "defaults date to today",
			body: `{"type":"Expense","amount":"8,5","category":"交通"}`,
			want: core.Draft{Type: core.Expense, Amount: 8.5, Category: "交通", Date: "2024-03-09"},
		},
		{
			name: "keeps explicit date and trims note",
			body: "type=income&amount=1000&category=工资&note=+march+&date=2024-02-29",
			want: core.Draft{Type: core.Income, Amount: 1000, Category: "工资", Note: "march", Date: "2024-02-29"},
		},
		{name: "invalid type", body: `{"type":"x","amount":1,"category":"a"}`, wantErr: core.ErrInvalidType},
		{name: "invalid amount", body: `{"type":"income","amount":"1.2.3","category":"a"}`, wantErr: core.ErrInvalidAmount},
		{name: "blank category", body: `{"type":"income","amount":1,"category":"   "}`, wantErr: core.ErrEmptyCategory},
		{name: "invalid date", body: `{"type":"income","amount":1,"category":"a","date":"2023-02-29"}`, wantErr: core.ErrInvalidDate},
		{name: "malformed", body: `{`, wantErr: errMalformedBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contentType := "application/x-www-form-urlencoded"
			if strings.HasPrefix(tt.body, "{") {
				contentType = "application/json"
			}
			got, err := ParseDraft(newParser(contentType, tt.body), today)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseDraft() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDraft() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseDraft() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	p := newParser("application/json", `{"month":"2024-05"}`)
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if got, err := ParseMonth(p, req); err != nil || got != "2024-05" {
		t.Errorf("body month = %q, %v", got, err)
	}

	p = newParser("", "")
	req = httptest.NewRequest(http.MethodPost, "/?month=2023-11", nil)
	if got, err := ParseMonth(p, req); err != nil || got != "2023-11" {
		t.Errorf("query month = %q, %v", got, err)
	}

	p = newParser("application/json", `{"month":"2024-5"}`)
	if _, err := ParseMonth(p, req); !errors.Is(err, core.ErrInvalidMonth) {
		t.Errorf("short month error = %v", err)
	}
}
