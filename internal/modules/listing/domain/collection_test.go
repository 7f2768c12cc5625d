package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeCollectionAcceptsStringPerPage(t *testing.T) {
	raw := json.RawMessage(`{
		"current_page": 2,
		"data": [{"id":1},{"id":2}],
		"last_page": 5,
		"per_page": "15",
		"total": 63,
		"from": 16,
		"to": 30,
		"links": [{"url":null,"label":"&laquo; Previous","active":false}]
	}`)

	collection, err := DecodeCollection(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if collection.PerPage.Int() != 15 {
		t.Fatalf("expected per_page 15, got %d", collection.PerPage.Int())
	}
	if len(collection.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(collection.Rows))
	}
	if len(collection.Links) != 1 || collection.Links[0].URL != nil {
		t.Fatalf("unexpected links %+v", collection.Links)
	}
}

func TestDecodeCollectionRejectsOverfullPage(t *testing.T) {
	raw := json.RawMessage(`{"current_page":1,"data":[{},{},{}],"last_page":1,"per_page":2,"total":3}`)
	if _, err := DecodeCollection(raw); !errors.Is(err, ErrMalformedPage) {
		t.Fatalf("expected ErrMalformedPage, got %v", err)
	}
}

func TestDecodeCollectionRejectsPagePastLast(t *testing.T) {
	raw := json.RawMessage(`{"current_page":9,"data":[],"last_page":3,"per_page":15,"total":40}`)
	if _, err := DecodeCollection(raw); !errors.Is(err, ErrMalformedPage) {
		t.Fatalf("expected ErrMalformedPage, got %v", err)
	}
}

func TestShowingRangeUsesPaginatorBounds(t *testing.T) {
	collection := &Collection{CurrentPage: 2, PerPage: 15, Total: 63, From: 16, To: 30}
	from, to, total := collection.ShowingRange()
	if from != 16 || to != 30 || total != 63 {
		t.Fatalf("expected 16..30 of 63, got %d..%d of %d", from, to, total)
	}
}

func TestShowingRangeDerivesBoundsWhenAbsent(t *testing.T) {
	collection := &Collection{CurrentPage: 3, PerPage: 15, Total: 33}
	from, to, total := collection.ShowingRange()
	if from != 31 || to != 33 || total != 33 {
		t.Fatalf("expected 31..33 of 33, got %d..%d of %d", from, to, total)
	}
}

func TestShowingRangeEmptyTotal(t *testing.T) {
	collection := &Collection{CurrentPage: 1, PerPage: 15}
	from, to, total := collection.ShowingRange()
	if from != 0 || to != 0 || total != 0 {
		t.Fatalf("expected zero range, got %d..%d of %d", from, to, total)
	}
}
