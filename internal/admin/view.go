package admin

import (
	"fmt"

	"github.com/kozaktomas/clinic-kiosk/internal/patient"
)

// EmptyText is shown when there is nothing to list.
const EmptyText = "Tidak ada data pasien."

// View is the rendered table.
type View struct {
	Rows         []patient.Record   `json:"rows"`
	Empty        string             `json:"empty,omitempty"`
	Total        int                `json:"total"`
	Page         int                `json:"page"`
	TotalPages   int                `json:"total_pages"`
	PageSize     int                `json:"page_size"`
	PageInfo     string             `json:"page_info"`
	PageLabel    string             `json:"page_label"`
	PrevDisabled bool               `json:"prev_disabled"`
	NextDisabled bool               `json:"next_disabled"`
	SortKey      SortKey            `json:"sort_key"`
	SortDir      Direction          `json:"sort_dir"`
	Arrows       map[SortKey]string `json:"arrows"`
	Edit         *patient.EditForm  `json:"edit,omitempty"`
	Alert        string             `json:"alert,omitempty"`
}

// Arrow returns the header marker for a column.
func (v View) Arrow(key SortKey) string {
	return v.Arrows[key]
}

func render(s *State, edit *patient.EditForm, alert string) View {
	rows := s.Visible()
	total := len(s.Records)
	totalPages := s.TotalPages()

	start, end := 0, 0
	if total > 0 {
		start = (s.Page-1)*s.PageSize + 1
		end = min(s.Page*s.PageSize, total)
	}

	arrows := make(map[SortKey]string, len(SortKeys))
	for _, k := range SortKeys {
		arrows[k] = ""
	}
	if s.SortDir == Asc {
		arrows[s.SortKey] = "▲"
	} else {
		arrows[s.SortKey] = "▼"
	}

	v := View{
		Rows:         append([]patient.Record(nil), rows...),
		Total:        total,
		Page:         s.Page,
		TotalPages:   totalPages,
		PageSize:     s.PageSize,
		PageInfo:     fmt.Sprintf("Menampilkan %d-%d dari %d", start, end, total),
		PageLabel:    fmt.Sprintf("Halaman %d / %d", s.Page, totalPages),
		PrevDisabled: s.Page == 1,
		NextDisabled: s.Page == totalPages,
		SortKey:      s.SortKey,
		SortDir:      s.SortDir,
		Arrows:       arrows,
		Alert:        alert,
	}
	if len(rows) == 0 {
		v.Empty = EmptyText
	}
	if edit != nil {
		e := *edit
		v.Edit = &e
	}
	return v
}
