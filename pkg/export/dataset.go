package export

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Document is a titled dataset with optional caption lines printed above the table.
type Document struct {
	Title    string
	Captions []string
	Data     Dataset
}
