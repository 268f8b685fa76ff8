package extractor

import (
	"net/url"
	"testing"
)

func mustBase(t *testing.T) *url.URL {
	t.Helper()
	base, err := url.Parse("https://delhihighcourt.nic.in")
	if err != nil {
		t.Fatalf("Failed to parse base URL: %v", err)
	}
	return base
}

func TestExtractParties(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		parties []string
	}{
		{
			name:    "vs with dot in a div",
			html:    `<html><body><div>Plaintiff Name vs. Defendant Name</div></body></html>`,
			parties: []string{"Plaintiff Name", "Defendant Name"},
		},
		{
			name:    "plain vs in a table cell",
			html:    `<table><tr><td>State of Delhi VS Ram Kumar</td></tr></table>`,
			parties: []string{"State of Delhi", "Ram Kumar"},
		},
		{
			name:    "v/s separator",
			html:    `<p>ABC Traders v/s XYZ Exports</p>`,
			parties: []string{"ABC Traders", "XYZ Exports"},
		},
		{
			name: "first match wins",
			html: `<div>Alpha vs Beta</div><div>Gamma vs Delta</div>`,
			parties: []string{"Alpha", "Beta"},
		},
		{
			name:    "no separator",
			html:    `<div>Cause list for today</div>`,
			parties: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details, err := Extract(tt.html, mustBase(t))
			if err != nil {
				t.Fatalf("Extract returned error: %v", err)
			}

			if len(details.Parties) != len(tt.parties) {
				t.Fatalf("Expected %d parties, got %d (%v)", len(tt.parties), len(details.Parties), details.Parties)
			}
			for i, want := range tt.parties {
				if details.Parties[i] != want {
					t.Errorf("Expected party %d to be %q, got %q", i, want, details.Parties[i])
				}
			}
		})
	}
}

func TestExtractDates(t *testing.T) {
	t.Run("single token sets only filing date", func(t *testing.T) {
		details, err := Extract(`<div>Filed on 12-03-2023</div>`, mustBase(t))
		if err != nil {
			t.Fatalf("Extract returned error: %v", err)
		}

		if details.FilingDate == nil || *details.FilingDate != "12-03-2023" {
			t.Errorf("Expected filing date 12-03-2023, got %v", details.FilingDate)
		}
		if details.NextHearingDate != nil {
			t.Errorf("Expected nil next hearing date, got %q", *details.NextHearingDate)
		}
	})

	t.Run("two tokens set first and last", func(t *testing.T) {
		html := `<div>Filed 01/01/2022</div><div>Next hearing 15/06/2023</div>`
		details, err := Extract(html, mustBase(t))
		if err != nil {
			t.Fatalf("Extract returned error: %v", err)
		}

		if details.FilingDate == nil || *details.FilingDate != "01/01/2022" {
			t.Errorf("Expected filing date 01/01/2022, got %v", details.FilingDate)
		}
		if details.NextHearingDate == nil || *details.NextHearingDate != "15/06/2023" {
			t.Errorf("Expected next hearing date 15/06/2023, got %v", details.NextHearingDate)
		}
	})

	t.Run("tokens stay separate across adjacent blocks", func(t *testing.T) {
		// No whitespace between the closing and opening tags: the token at
		// the end of the first cell must not fuse with the digit that
		// starts the next cell.
		html := `<table><tr><td>Filed 12-03-2023</td><td>4 orders</td><td>Next 15/06/2023</td></tr></table>`
		details, err := Extract(html, mustBase(t))
		if err != nil {
			t.Fatalf("Extract returned error: %v", err)
		}

		if details.FilingDate == nil || *details.FilingDate != "12-03-2023" {
			t.Errorf("Expected filing date 12-03-2023, got %v", details.FilingDate)
		}
		if details.NextHearingDate == nil || *details.NextHearingDate != "15/06/2023" {
			t.Errorf("Expected next hearing date 15/06/2023, got %v", details.NextHearingDate)
		}
	})

	t.Run("script and style text is not scanned", func(t *testing.T) {
		html := `<script>var d = "9-9-2099";</script><div>Filed 12-03-2023</div>`
		details, err := Extract(html, mustBase(t))
		if err != nil {
			t.Fatalf("Extract returned error: %v", err)
		}

		if details.FilingDate == nil || *details.FilingDate != "12-03-2023" {
			t.Errorf("Expected filing date 12-03-2023, got %v", details.FilingDate)
		}
		if details.NextHearingDate != nil {
			t.Errorf("Expected nil next hearing date, got %q", *details.NextHearingDate)
		}
	})

	t.Run("three tokens pick first and last in document order", func(t *testing.T) {
		html := `<div>1-2-2021 then 3/4/2022 then 5-6-23</div>`
		details, err := Extract(html, mustBase(t))
		if err != nil {
			t.Fatalf("Extract returned error: %v", err)
		}

		if details.FilingDate == nil || *details.FilingDate != "1-2-2021" {
			t.Errorf("Expected filing date 1-2-2021, got %v", details.FilingDate)
		}
		if details.NextHearingDate == nil || *details.NextHearingDate != "5-6-23" {
			t.Errorf("Expected next hearing date 5-6-23, got %v", details.NextHearingDate)
		}
	})
}

func TestExtractOrders(t *testing.T) {
	t.Run("relative link resolves against base", func(t *testing.T) {
		html := `<a href="/orders/final.pdf">Final Order</a>`
		details, err := Extract(html, mustBase(t))
		if err != nil {
			t.Fatalf("Extract returned error: %v", err)
		}

		if len(details.Orders) != 1 {
			t.Fatalf("Expected 1 order, got %d", len(details.Orders))
		}
		order := details.Orders[0]
		if order.Title != "Final Order" {
			t.Errorf("Expected title 'Final Order', got %q", order.Title)
		}
		if order.URL != "https://delhihighcourt.nic.in/orders/final.pdf" {
			t.Errorf("Unexpected order URL: %q", order.URL)
		}
		if order.Date != nil {
			t.Errorf("Expected nil order date, got %v", *order.Date)
		}
	})

	t.Run("empty link text falls back to placeholder", func(t *testing.T) {
		html := `<a href="interim.PDF"></a>`
		details, err := Extract(html, mustBase(t))
		if err != nil {
			t.Fatalf("Extract returned error: %v", err)
		}

		if len(details.Orders) != 1 {
			t.Fatalf("Expected 1 order, got %d", len(details.Orders))
		}
		if details.Orders[0].Title != "Order Document" {
			t.Errorf("Expected placeholder title, got %q", details.Orders[0].Title)
		}
	})

	t.Run("non-pdf links are skipped", func(t *testing.T) {
		html := `<a href="/case/details.html">Details</a><a href="/orders/list.asp">Orders</a>`
		details, err := Extract(html, mustBase(t))
		if err != nil {
			t.Fatalf("Extract returned error: %v", err)
		}

		if len(details.Orders) != 0 {
			t.Errorf("Expected no orders, got %d", len(details.Orders))
		}
	})
}

func TestExtractEmptyDocument(t *testing.T) {
	details, err := Extract(`<html><body><h1>Case Status</h1></body></html>`, mustBase(t))
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if details.Parties == nil || len(details.Parties) != 0 {
		t.Errorf("Expected empty parties slice, got %v", details.Parties)
	}
	if details.FilingDate != nil {
		t.Errorf("Expected nil filing date, got %v", *details.FilingDate)
	}
	if details.NextHearingDate != nil {
		t.Errorf("Expected nil next hearing date, got %v", *details.NextHearingDate)
	}
	if details.Orders == nil || len(details.Orders) != 0 {
		t.Errorf("Expected empty orders slice, got %v", details.Orders)
	}
	if details.Status != StatusActive {
		t.Errorf("Expected status %q, got %q", StatusActive, details.Status)
	}
}

func TestExtractStatusAlwaysActive(t *testing.T) {
	details, err := Extract(`<div>Status: Disposed</div>`, mustBase(t))
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if details.Status != StatusActive {
		t.Errorf("Expected placeholder status %q, got %q", StatusActive, details.Status)
	}
}
