package param

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

// ErrParamFileUnopenable is returned when the named file cannot be
// opened for reading.
var ErrParamFileUnopenable = fmt.Errorf("param: file unopenable")

// ReadFile parses a whitespace-tolerant "keyword value" text stream.
// Lines with fewer than two tokens are skipped. Unknown keywords trigger
// a warning and are otherwise ignored. The special keyword ParamFile
// recursively includes another file; Quiet toggles echo of parsed
// assignments.
func (s *Set) ReadFile(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is an operator-supplied configuration file, not untrusted input
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrParamFileUnopenable, path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] < ' ' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		keyword, value, rest := fields[0], fields[1], fields[2:]

		switch keyword {
		case "ParamFile":
			if err := s.ReadFile(value); err != nil {
				return err
			}
			continue
		case "Quiet":
			s.Quiet = value == "1"
			continue
		}

		if err := s.assign(keyword, value, rest); err != nil {
			log.Printf("param: %s %s ignored: %v", keyword, value, err)
			continue
		}
		if !s.Quiet {
			log.Printf("param: %s = %s", keyword, value)
		}
	}
	return scanner.Err()
}

// ReadArgs parses an argument list shaped as alternating key/value
// pairs, e.g. ["Alps_maxNodes", "100", "Alps_logLevel", "2"].
func (s *Set) ReadArgs(args []string) error {
	for i := 0; i+1 < len(args); i += 2 {
		if err := s.assign(args[i], args[i+1], nil); err != nil {
			log.Printf("param: %s %s ignored: %v", args[i], args[i+1], err)
		}
	}
	return nil
}

// assign parses value (plus any trailing rest tokens, for string
// arrays) into the key's declared kind. Unknown keywords and values that
// do not parse as the key's kind return an error so callers can warn and
// continue, per spec.
func (s *Set) assign(keyword, value string, rest []string) error {
	k, ok := s.keys[keyword]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, keyword)
	}
	switch k.kind {
	case BoolKind:
		s.bools[k.index] = value == "1" || strings.EqualFold(value, "true")
	case IntKind:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		s.ints[k.index] = n
	case RealKind:
		r, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		s.reals[k.index] = r
	case StringKind:
		s.strings[k.index] = value
	case StringArrayKind:
		s.stringArrays[k.index] = append([]string{value}, rest...)
	}
	return nil
}
