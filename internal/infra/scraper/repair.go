package scraper

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"
)

// namedEntityPattern matches named references only; numeric references such
// as &#233; or &#xE9; never match.
var namedEntityPattern = regexp.MustCompile(`&([A-Za-z][A-Za-z0-9]*);`)

// htmlEntities are the HTML named entities feeds commonly leak into XML.
var htmlEntities = map[string]string{
	"nbsp":   " ",
	"ensp":   " ",
	"emsp":   " ",
	"thinsp": " ",
	"zwnj":   "",
	"zwj":    "",
	"shy":    "",
	"copy":   "©",
	"reg":    "®",
	"trade":  "™",
	"mdash":  "—",
	"ndash":  "–",
	"hellip": "…",
	"lsquo":  "‘",
	"rsquo":  "’",
	"sbquo":  "‚",
	"ldquo":  "“",
	"rdquo":  "”",
	"bdquo":  "„",
	"laquo":  "«",
	"raquo":  "»",
	"bull":   "•",
	"middot": "·",
	"dagger": "†",
	"deg":    "°",
	"times":  "×",
	"divide": "÷",
	"plusmn": "±",
	"para":   "¶",
	"sect":   "§",
	"euro":   "€",
	"pound":  "£",
	"yen":    "¥",
	"cent":   "¢",
	"iexcl":  "¡",
	"iquest": "¿",
	"agrave": "à",
	"aacute": "á",
	"acirc":  "â",
	"auml":   "ä",
	"ccedil": "ç",
	"egrave": "è",
	"eacute": "é",
	"ecirc":  "ê",
	"euml":   "ë",
	"iacute": "í",
	"icirc":  "î",
	"iuml":   "ï",
	"ntilde": "ñ",
	"oacute": "ó",
	"ocirc":  "ô",
	"ouml":   "ö",
	"uacute": "ú",
	"ucirc":  "û",
	"uuml":   "ü",
	"szlig":  "ß",
	"Eacute": "É",
	"Agrave": "À",
	"Ccedil": "Ç",
	"Auml":   "Ä",
	"Ouml":   "Ö",
	"Uuml":   "Ü",
}

// xmlEntities are predefined by XML itself.
var xmlEntities = map[string]string{
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"quot": `"`,
	"apos": "'",
}

// RepairEntities replaces named entities in plain text: known ones (including
// &amp; and the other XML-predefined entities) by their character, unknown
// ones by a single space. Numeric references are left untouched.
func RepairEntities(s string) string {
	return namedEntityPattern.ReplaceAllStringFunc(s, func(m string) string {
		name := m[1 : len(m)-1]
		if r, ok := xmlEntities[name]; ok {
			return r
		}
		if r, ok := htmlEntities[name]; ok {
			return r
		}
		return " "
	})
}

// repairXML is RepairEntities for a whole document: the XML-predefined
// entities are kept as references so the markup stays well-formed.
func repairXML(doc []byte) []byte {
	return namedEntityPattern.ReplaceAllFunc(doc, func(m []byte) []byte {
		name := string(m[1 : len(m)-1])
		if _, ok := xmlEntities[name]; ok {
			return m
		}
		if r, ok := htmlEntities[name]; ok {
			return []byte(r)
		}
		return []byte(" ")
	})
}

// checkWellFormed runs a strict XML scan over the document and returns the
// first syntax error. It plays the role of a lenient parser's "bozo" flag.
func checkWellFormed(doc []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(doc))
	dec.Strict = true
	dec.CharsetReader = charset.NewReaderLabel
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func isEntityError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "invalid character entity") ||
		strings.Contains(msg, "undefined entity")
}
