package mso

// Document holds the parsed outcome of one MSO export: retained filters per
// channel plus the shared sub channel's filters, if any.
type Document struct {
	Channels map[string][]Filter
	Shared   []Filter
}

// ParseDocument runs both parsing stages over a full MSO export: channel and
// shared block extraction, then filter parsing within each block. Channels
// whose blocks yield no retained filters are omitted.
func ParseDocument(content string, opts Options) (*Document, error) {
	doc := &Document{Channels: make(map[string][]Filter)}

	for name, block := range ExtractChannelBlocks(content) {
		filters, err := ParseFilters(block, opts)
		if err != nil {
			return nil, err
		}
		if len(filters) > 0 {
			doc.Channels[name] = filters
		}
	}

	if block, ok := ExtractSharedBlock(content); ok {
		filters, err := ParseFilters(block, opts)
		if err != nil {
			return nil, err
		}
		doc.Shared = filters
	}

	return doc, nil
}
