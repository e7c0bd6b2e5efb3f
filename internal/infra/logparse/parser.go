package logparse

import (
	"bufio"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Envelope pattern: "yyyy-MM-dd HH:mm:ss.SSS [thread] LEVEL logger - message".
var envelopeRe = regexp.MustCompile(
	`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3})\s+` + // timestamp
		`\[([^\]]+)\]\s+` + // thread
		`([A-Z]+)\s+` + // level
		`(\S+)\s+-\s+` + // logger
		`(.+)$`) // message

const timestampLayout = "2006-01-02 15:04:05.000"

// Structured grammar field patterns, each of the form "Label: value"
// separated by " | ".
var (
	operationRe   = regexp.MustCompile(`Operation:\s*(\w+)`)
	userRe        = regexp.MustCompile(`User:\s*([^|]+?)\s*(?:\||$)`)
	emailRe       = regexp.MustCompile(`Email:\s*([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`)
	productIDRe   = regexp.MustCompile(`ProductID:\s*(\d+)`)
	idRe          = regexp.MustCompile(`ID:\s*(\d+)`)
	productNameRe = regexp.MustCompile(`ProductName:\s*([^|]+?)\s*(?:\||$)`)
	nameLabelRe   = regexp.MustCompile(`Name:\s*([^|]+?)\s*(?:\||$)`)
	actionRe      = regexp.MustCompile(`Action:\s*(READ|WRITE)`)
	euroPriceRe   = regexp.MustCompile(`Price:\s*€([\d.]+)`)
)

// Heuristic fallback grammar patterns.
var (
	anyEmailRe   = regexp.MustCompile(`([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`)
	looseUserRe  = regexp.MustCompile(`User[:\s]+([A-Za-z\s]+)(?:\s|$)`)
	looseIDRe    = regexp.MustCompile(`(?:ID|id)[:\s]+(\d+)`)
	loosePriceRe = regexp.MustCompile(`(?:€|EUR|Price:)[:\s]*([\d.]+)`)
	looseNameRe  = regexp.MustCompile(`Name[:\s]+([^|]+?)\s*(?:\||$)`)
	durationRe   = regexp.MustCompile(`(\d+)\s*(?:ms|milliseconds)`)
)

// actionKinds maps known operation names to their operation type.
var actionKinds = []struct {
	action string
	kind   string
}{
	{"getAllProducts", "READ"},
	{"getProductById", "READ"},
	{"addProduct", "WRITE"},
	{"updateProduct", "WRITE"},
	{"deleteProduct", "WRITE"},
}

// Parser converts archived log lines into entries. A line that matches
// neither the envelope nor any message grammar is simply not an
// operation; that is never an error.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a log line parser.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

// ParseLine parses one raw log line. It reports false when the line does
// not match the envelope pattern.
func (p *Parser) ParseLine(line string) (*Entry, bool) {
	m := envelopeRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}

	ts, err := time.Parse(timestampLayout, m[1])
	if err != nil {
		return nil, false
	}

	entry := &Entry{
		Timestamp: ts,
		Thread:    m[2],
		Level:     m[3],
		Logger:    m[4],
		Message:   m[5],
	}

	// The two grammars are mutually exclusive per line: the structured
	// marker wins so a single operation is never counted twice.
	if strings.Contains(entry.Message, "Operation:") {
		p.parseStructured(entry)
	} else {
		p.parseHeuristic(entry)
	}

	return entry, true
}

// parseStructured extracts "Label: value" fields from messages carrying
// the structured "Operation:" marker.
func (p *Parser) parseStructured(entry *Entry) {
	msg := entry.Message
	entry.Event = "PRODUCT_OPERATION"

	if m := operationRe.FindStringSubmatch(msg); m != nil {
		// The Operation label carries either the operation name or, in
		// result lines, the operation type itself.
		switch m[1] {
		case "READ", "WRITE", "SEARCH_EXPENSIVE":
			entry.OperationType = m[1]
		default:
			entry.Action = m[1]
		}
	}

	if m := userRe.FindStringSubmatch(msg); m != nil {
		name := strings.TrimSpace(m[1])
		if name != "Unknown" {
			entry.UserName = name
		}
	}

	if m := emailRe.FindStringSubmatch(msg); m != nil {
		entry.UserEmail = m[1]
	}

	if m := productIDRe.FindStringSubmatch(msg); m != nil {
		entry.ResourceID = &m[1]
		entry.ResourceType = "PRODUCT"
	} else if m := idRe.FindStringSubmatch(msg); m != nil {
		entry.ResourceID = &m[1]
		entry.ResourceType = "PRODUCT"
	}

	if m := productNameRe.FindStringSubmatch(msg); m != nil {
		name := strings.TrimSpace(m[1])
		entry.ResourceName = &name
		entry.ResourceType = "PRODUCT"
	} else if m := nameLabelRe.FindStringSubmatch(msg); m != nil {
		name := strings.TrimSpace(m[1])
		entry.ResourceName = &name
	}

	if m := actionRe.FindStringSubmatch(msg); m != nil {
		entry.OperationType = m[1]
	}

	if m := euroPriceRe.FindStringSubmatch(msg); m != nil {
		if price, err := strconv.ParseFloat(m[1], 64); err == nil {
			entry.ResourcePrice = &price
		}
	}

	// An expensive product view overrides whatever the other labels said.
	if strings.Contains(msg, "Expensive product view") {
		entry.Action = "viewExpensiveProduct"
		entry.OperationType = "SEARCH_EXPENSIVE"
	}

	switch {
	case strings.Contains(msg, "SUCCESS"):
		entry.Result = "SUCCESS"
	case strings.Contains(msg, "ERROR"):
		entry.Result = "ERROR"
	}
}

// parseHeuristic scans for keyword substrings when the structured marker
// is absent.
func (p *Parser) parseHeuristic(entry *Entry) {
	msg := entry.Message

	if strings.Contains(msg, "User ") || strings.Contains(msg, "user") {
		if m := anyEmailRe.FindStringSubmatch(msg); m != nil {
			entry.UserEmail = m[1]
		}
		if m := looseUserRe.FindStringSubmatch(msg); m != nil {
			name := strings.TrimSpace(m[1])
			if name != "Unknown" {
				entry.UserName = name
			}
		}
	}

	if strings.Contains(msg, "product") || strings.Contains(msg, "Product") {
		entry.Event = "PRODUCT_OPERATION"
		entry.ResourceType = "PRODUCT"
		if m := looseIDRe.FindStringSubmatch(msg); m != nil {
			entry.ResourceID = &m[1]
		}
		if m := loosePriceRe.FindStringSubmatch(msg); m != nil {
			if price, err := strconv.ParseFloat(m[1], 64); err == nil {
				entry.ResourcePrice = &price
			}
		}
		if m := looseNameRe.FindStringSubmatch(msg); m != nil {
			name := strings.TrimSpace(m[1])
			entry.ResourceName = &name
		}
	}

	for _, ak := range actionKinds {
		if strings.Contains(msg, ak.action) {
			entry.Action = ak.action
			entry.OperationType = ak.kind

			break
		}
	}

	if strings.Contains(msg, "Expensive product view") || strings.Contains(msg, "SEARCH_EXPENSIVE") {
		entry.Action = "viewExpensiveProduct"
		entry.OperationType = "SEARCH_EXPENSIVE"
	}

	if strings.Contains(msg, "authenticated") || strings.Contains(msg, "login") {
		entry.Event = "USER_AUTHENTICATION"
		if strings.Contains(msg, "Success") || strings.Contains(msg, "successfully") {
			entry.Result = "SUCCESS"
		} else {
			entry.Result = "FAILURE"
		}
	}

	if strings.Contains(msg, "registered") || strings.Contains(msg, "registration") {
		entry.Event = "USER_REGISTRATION"
		entry.Result = "SUCCESS"
	}

	if strings.Contains(msg, "Error") || strings.Contains(msg, "failed") || strings.Contains(msg, "Exception") {
		entry.Result = "ERROR"
		entry.ErrorMessage = msg
	} else if entry.Result == "" {
		entry.Result = "SUCCESS"
	}

	if m := durationRe.FindStringSubmatch(msg); m != nil {
		if ms, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			entry.DurationMS = &ms
		}
	}
}

// ParseFile parses a whole log file, returning the parsed entries and
// the number of lines that produced no entry. A malformed line never
// aborts the batch.
func (p *Parser) ParseFile(path string) ([]Entry, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "open log file %s", path)
	}
	defer f.Close()

	var entries []Entry
	skipped := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		entry, ok := p.ParseLine(line)
		if !ok {
			skipped++

			continue
		}
		entries = append(entries, *entry)
	}
	if err := scanner.Err(); err != nil {
		return entries, skipped, errors.Wrapf(err, "read log file %s", path)
	}

	p.logger.Info("parsed log file",
		slog.String("path", path),
		slog.Int("entries", len(entries)),
		slog.Int("skipped", skipped))

	return entries, skipped, nil
}

// ParseFiles parses every given file, skipping over files that cannot be
// read. Missing files are logged, not fatal.
func (p *Parser) ParseFiles(paths []string) ([]Entry, int) {
	var all []Entry
	skipped := 0

	for _, path := range paths {
		entries, n, err := p.ParseFile(path)
		if err != nil {
			p.logger.Warn("skipping log file",
				slog.String("path", path),
				slog.Any("error", err))
		}
		all = append(all, entries...)
		skipped += n
	}

	return all, skipped
}
