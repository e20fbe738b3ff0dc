/*
Package ucdtest reads test files in the format of the Unicode Character
Database test files, such as BidiCharacterTest.txt.

Lines starting with '#' are comments. Data lines consist of fields
separated by ';', optionally followed by a comment introduced by '#'.
*/
package ucdtest

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"testing"
)

// TestFile is a test file opened for scanning.
type TestFile struct {
	in      *os.File
	scanner *bufio.Scanner
	fields  []string
	comment string
}

// OpenTestFile opens a test file. Failure to open it is reported to t.
func OpenTestFile(filename string, t *testing.T) *TestFile {
	f, err := os.Open(filename)
	if err != nil {
		t.Fatalf("cannot load test file %s: %v", filename, err)
		return nil
	}
	return &TestFile{
		in:      f,
		scanner: bufio.NewScanner(f),
	}
}

// Scan advances to the next data line, skipping empty lines and comments.
func (tf *TestFile) Scan() bool {
	for tf.scanner.Scan() {
		text := strings.TrimSpace(tf.scanner.Text())
		if len(text) == 0 || text[0] == '#' {
			continue
		}
		tf.comment = ""
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text, tf.comment = text[:i], strings.TrimSpace(text[i+1:])
		}
		tf.fields = strings.Split(text, ";")
		for i := range tf.fields {
			tf.fields[i] = strings.TrimSpace(tf.fields[i])
		}
		return true
	}
	return false
}

// Field returns field #i (0…n-1) of the current data line, or "".
func (tf *TestFile) Field(i int) string {
	if i < 0 || i >= len(tf.fields) {
		return ""
	}
	return tf.fields[i]
}

// Comment returns the comment of the current data line.
func (tf *TestFile) Comment() string {
	return tf.comment
}

// Err returns the first non-EOF error of the scanner.
func (tf *TestFile) Err() error {
	return tf.scanner.Err()
}

// Close closes the underlying file.
func (tf *TestFile) Close() {
	tf.in.Close()
}

// ReadHex reads a sequence of space separated hex code points.
func ReadHex(inp string) []rune {
	sc := bufio.NewScanner(strings.NewReader(inp))
	sc.Split(bufio.ScanWords)
	run := make([]rune, 0, 20)
	for sc.Scan() {
		n, _ := strconv.ParseUint(sc.Text(), 16, 32)
		run = append(run, rune(n))
	}
	return run
}

// ReadLevels reads a sequence of space separated levels. Levels of
// characters removed by the bidi algorithm are given as 'x' and are
// returned as -1.
func ReadLevels(inp string) []int {
	sc := bufio.NewScanner(strings.NewReader(inp))
	sc.Split(bufio.ScanWords)
	l := make([]int, 0, len(inp)/2+1)
	for sc.Scan() {
		n, err := strconv.Atoi(sc.Text())
		if err != nil {
			n = -1
		}
		l = append(l, n)
	}
	return l
}
