package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		wantName string
		wantDesc string
	}{
		{
			name:     "with separator splits name, keeps full description",
			title:    "Chicken & Waffles with Syrup",
			wantName: "Chicken & Waffles",
			wantDesc: "Chicken & Waffles with Syrup",
		},
		{
			name:     "ampersand is never a split point",
			title:    "Mac & Cheese",
			wantName: "Mac & Cheese",
			wantDesc: "Mac & Cheese",
		},
		{
			name:     "first separator wins",
			title:    "Roast with Gravy with Rolls",
			wantName: "Roast",
			wantDesc: "Roast with Gravy with Rolls",
		},
		{
			name:     "no separator",
			title:    "Garden Salad",
			wantName: "Garden Salad",
			wantDesc: "Garden Salad",
		},
		{
			name:     "separator requires surrounding spaces",
			title:    "Sandwiches",
			wantName: "Sandwiches",
			wantDesc: "Sandwiches",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			name, desc := NormalizeTitle(tc.title)
			assert.Equal(t, tc.wantName, name)
			assert.Equal(t, tc.wantDesc, desc)
		})
	}
}

func TestIsAnnouncement(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"No School", true},
		{"NO SCHOOL - Staff Development", true},
		{"Winter Break", true},
		{"spring break", true},
		{"Last Day of School", true},
		{"Memorial Day", true},
		{"Teacher Work Day", true},
		{"1st Quarter Ends", true},
		{"Chicken Tenders", false},
		{"Schooner Sandwich", false},
	}

	for _, tc := range tests {
		t.Run(tc.title, func(t *testing.T) {
			assert.Equal(t, tc.want, IsAnnouncement(tc.title))
		})
	}
}
