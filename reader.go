package babi_dataset

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"
)

// readText maps the file at `path` into memory and hands its contents to
// `consume`. Errors from opening or mapping the file are returned as-is.
func readText(path string, consume func(io.Reader) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return err
	}
	// Mapping an empty file fails on most platforms.
	if stat.Size() == 0 {
		return consume(bytes.NewReader(nil))
	}

	contents, unmap, err := readMmap(file)
	if err != nil {
		return err
	}
	consumeErr := consume(bytes.NewReader(contents))
	if unmapErr := unmap(); consumeErr == nil {
		return unmapErr
	}
	return consumeErr
}

// eachLine calls `fn` with every line of `reader` and its 1-based line
// number, without the trailing newline. Lines have no length limit.
func eachLine(reader io.Reader, fn func(lineNo int, line string) error) error {
	buffered := bufio.NewReader(reader)
	lineNo := 0
	for {
		line, readErr := buffered.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return readErr
		}
		if len(line) > 0 {
			lineNo++
			if err := fn(lineNo, strings.TrimRight(line, "\r\n")); err != nil {
				return err
			}
		}
		if readErr == io.EOF {
			return nil
		}
	}
}
