// Package loader turns tagged data-file records into typed model rows and
// stages them for insertion.
package loader

// Record is one entry of a data file.
type Record struct {
	Model  string         `json:"model" yaml:"model"`
	PK     int64          `json:"pk" yaml:"pk"`
	Fields map[string]any `json:"fields" yaml:"fields"`
}

// Model identifies which table a Record belongs to.
type Model int

const (
	ModelUnknown Model = iota
	ModelPublisher
	ModelBook
	ModelShop
	ModelStock
	ModelSale
)

var modelNames = map[Model]string{
	ModelPublisher: "publisher",
	ModelBook:      "book",
	ModelShop:      "shop",
	ModelStock:     "stock",
	ModelSale:      "sale",
}

// String returns the record tag for m.
func (m Model) String() string {
	if name, ok := modelNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseModel maps a record tag to a Model. Tags are matched exactly.
func ParseModel(tag string) (Model, bool) {
	for model, name := range modelNames {
		if name == tag {
			return model, true
		}
	}
	return ModelUnknown, false
}

// Models lists the known models in load order.
func Models() []Model {
	return []Model{ModelPublisher, ModelBook, ModelShop, ModelStock, ModelSale}
}
