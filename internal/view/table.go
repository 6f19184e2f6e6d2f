package view

type Tone string

const (
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
	ToneInfo    Tone = "info"
	ToneNeutral Tone = "neutral"
)

type Column[T any] struct {
	Key   string
	Title string
	Value func(T) any
}

// Table describes an entity listing: its columns, which fields the
// search box looks at, and how the status field maps to a badge.
type Table[T any] struct {
	Columns      []Column[T]
	Search       func(T) []string
	Status       func(T) string
	Badges       map[string]Tone
	EmptyMessage string
}

type ColumnHeader struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

type Badge struct {
	Label string `json:"label"`
	Tone  Tone   `json:"tone"`
}

type Row struct {
	Cells  map[string]any `json:"cells"`
	Status *Badge         `json:"status,omitempty"`
}

type TableView struct {
	Columns      []ColumnHeader `json:"columns"`
	Rows         []Row          `json:"rows"`
	Total        int            `json:"total"`
	Matched      int            `json:"matched"`
	Page         int            `json:"page"`
	PageSize     int            `json:"page_size"`
	Empty        bool           `json:"empty"`
	EmptyMessage string         `json:"empty_message,omitempty"`
}

type TableRequest[T any] struct {
	Text     string
	Status   string
	Filters  []Predicate[T]
	Page     int
	PageSize int
}

func (t Table[T]) Badge(status string) Badge {
	tone, ok := t.Badges[status]
	if !ok {
		tone = ToneNeutral
	}
	return Badge{Label: status, Tone: tone}
}

func (t Table[T]) Render(items []T, req TableRequest[T]) TableView {
	filters := append([]Predicate[T]{}, req.Filters...)
	if t.Status != nil {
		filters = append(filters, FieldEquals(t.Status, req.Status))
	}
	res := Query[T]{Text: req.Text, Fields: t.Search, Filters: filters, EmptyMessage: t.EmptyMessage}.Apply(items)

	page, size := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	visible := Page(res.Items, page, size)

	out := TableView{
		Columns:      make([]ColumnHeader, 0, len(t.Columns)),
		Rows:         make([]Row, 0, len(visible)),
		Total:        res.Total,
		Matched:      len(res.Items),
		Page:         page,
		PageSize:     size,
		Empty:        res.Empty,
		EmptyMessage: res.EmptyMessage,
	}
	for _, c := range t.Columns {
		out.Columns = append(out.Columns, ColumnHeader{Key: c.Key, Title: c.Title})
	}
	for _, it := range visible {
		row := Row{Cells: make(map[string]any, len(t.Columns))}
		for _, c := range t.Columns {
			row.Cells[c.Key] = c.Value(it)
		}
		if t.Status != nil {
			b := t.Badge(t.Status(it))
			row.Status = &b
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
