package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

func readDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: docx: %v", ErrCorruptedFile, err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("%w: docx: word/document.xml not found", ErrCorruptedFile)
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("%w: docx: %v", ErrCorruptedFile, err)
	}
	defer rc.Close()

	text, err := docxText(rc)
	if err != nil {
		return "", fmt.Errorf("%w: docx: %v", ErrCorruptedFile, err)
	}
	return text, nil
}

// docxText keeps run text, turns tabs into spaces and ends a line at every
// paragraph or explicit break.
func docxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var (
		buf    strings.Builder
		inText bool
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				buf.WriteString(" ")
			case "br", "cr":
				buf.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				buf.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		}
	}
	return strings.TrimSpace(buf.String()), nil
}
