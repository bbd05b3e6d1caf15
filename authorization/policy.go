package authorization

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	ruleFields       = 5
	membershipFields = 3
)

type UnknownPolicyTypeError struct {
	PolicyType string
}

func (err UnknownPolicyTypeError) Error() string {
	return "unknown policy type: " + err.PolicyType
}

type MalformedPolicyError struct {
	Line   int
	Record []string
}

func (err MalformedPolicyError) Error() string {
	return fmt.Sprintf("malformed policy record on line %d: %s", err.Line, strings.Join(err.Record, ", "))
}

// ParsePolicy reads casbin style policy lines: "p, subject, domain, object, action" and "g, subject, group".
// Blank lines and lines starting with # are skipped.
func ParsePolicy(content string) ([]Rule, []Membership, error) {
	reader := csv.NewReader(strings.NewReader(content))

	reader.FieldsPerRecord = -1
	reader.Comment = '#'
	reader.TrimLeadingSpace = true

	var (
		rules       []Rule
		memberships []Membership
	)

	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return nil, nil, fmt.Errorf("failed to read policy content: %w", err)
		}

		line, _ := reader.FieldPos(0)

		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}

		if record[0] == "" {
			continue
		}

		switch record[0] {
		case "p":
			if len(record) != ruleFields {
				return nil, nil, &MalformedPolicyError{Line: line, Record: record}
			}

			rules = append(rules, Rule{Subject: record[1], Domain: record[2], Object: record[3], Action: record[4]})
		case "g":
			if len(record) != membershipFields {
				return nil, nil, &MalformedPolicyError{Line: line, Record: record}
			}

			memberships = append(memberships, Membership{Subject: record[1], Group: record[2]})
		default:
			return nil, nil, &UnknownPolicyTypeError{PolicyType: record[0]}
		}
	}

	return rules, memberships, nil
}
