package dblp

import "encoding/json"

// searchResponse mirrors the publication search API envelope.
type searchResponse struct {
	Result struct {
		Hits struct {
			Hit []Hit `json:"hit"`
		} `json:"hits"`
	} `json:"result"`
}

// Hit is one publication search result.
type Hit struct {
	Info PublicationInfo `json:"info"`
}

// PublicationInfo carries the fields of a matched publication.
type PublicationInfo struct {
	Title   string     `json:"title"`
	Venue   string     `json:"venue"`
	Year    string     `json:"year"`
	Type    string     `json:"type"`
	DOI     string     `json:"doi"`
	URL     string     `json:"url"`
	Authors AuthorList `json:"authors"`
}

// AuthorList unwraps the API's authors envelope. DBLP returns
// {"author": {...}} for a single author and {"author": [...]} for
// several, so the inner field needs a shape-tolerant decoder.
type AuthorList struct {
	Names []string
}

type authorEntry struct {
	Text string `json:"text"`
}

func (a *AuthorList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		a.Names = nil
		return nil
	}

	var envelope struct {
		Author json.RawMessage `json:"author"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	if len(envelope.Author) == 0 {
		a.Names = nil
		return nil
	}

	// Try array first
	var many []authorEntry
	if err := json.Unmarshal(envelope.Author, &many); err == nil {
		for _, e := range many {
			if e.Text != "" {
				a.Names = append(a.Names, e.Text)
			}
		}
		return nil
	}

	// Single-author object
	var one authorEntry
	if err := json.Unmarshal(envelope.Author, &one); err != nil {
		return err
	}
	if one.Text != "" {
		a.Names = append(a.Names, one.Text)
	}
	return nil
}
