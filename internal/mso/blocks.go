package mso

import "strings"

const (
	channelStartMarker = `Channel: "`
	channelEndPrefix   = `End Channel: "`

	sharedStartMarker = "Shared sub channel:"
	sharedEndMarker   = "End shared sub channel"
)

// ExtractChannelBlocks finds every `Channel: "<name>" ... End Channel: "<name>"`
// span in the document and returns a map from channel name to the trimmed inner
// text. End markers must repeat the channel name exactly. Duplicate channel
// names overwrite earlier entries (last wins).
func ExtractChannelBlocks(content string) map[string]string {
	blocks := make(map[string]string)

	pos := 0
	for {
		i := strings.Index(content[pos:], channelStartMarker)
		if i < 0 {
			break
		}
		i += pos

		// `Channel: "` is a suffix of the end marker; skip end-marker hits.
		if i >= 4 && content[i-4:i] == "End " {
			pos = i + len(channelStartMarker)
			continue
		}

		nameStart := i + len(channelStartMarker)
		q := strings.IndexByte(content[nameStart:], '"')
		if q < 0 {
			break
		}
		name := content[nameStart : nameStart+q]
		bodyStart := nameStart + q + 1

		endMarker := channelEndPrefix + name + `"`
		e := strings.Index(content[bodyStart:], endMarker)
		if e < 0 {
			// Unterminated block; keep scanning for later well-formed ones.
			pos = bodyStart
			continue
		}

		blocks[name] = strings.TrimSpace(content[bodyStart : bodyStart+e])
		pos = bodyStart + e + len(endMarker)
	}

	return blocks
}

// ExtractSharedBlock returns the trimmed text between the shared sub channel
// start and end phrases. The second return value is false when either phrase
// is missing from the document.
func ExtractSharedBlock(content string) (string, bool) {
	start := strings.Index(content, sharedStartMarker)
	end := strings.Index(content, sharedEndMarker)
	if start < 0 || end < 0 || end < start+len(sharedStartMarker) {
		return "", false
	}
	return strings.TrimSpace(content[start+len(sharedStartMarker) : end]), true
}
