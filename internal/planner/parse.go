// Package planner turns decomposition documents into goal batches.
//
// Two input formats are supported: the plain-text MILESTONE block
// format produced by decomposition prompts, and a YAML plan file for
// hand-written or tool-generated plans. Both resolve to the same goal
// batches, ready for backlog admission.
package planner

import (
	"regexp"
	"strconv"
	"strings"
)

// Pre-compiled patterns for milestone block parsing.
var (
	milestoneSplitPattern = regexp.MustCompile(`(?i)MILESTONE\s+(\d+)\s*:`)
	producesPattern       = regexp.MustCompile(`(?i)PRODUCES:\s*(.+)`)
	requiresPattern       = regexp.MustCompile(`(?i)REQUIRES:\s*(.+)`)
	descriptionPattern    = regexp.MustCompile(`(?is)DESCRIPTION:\s*(.+?)(?:\n\n|$)`)
	numberPattern         = regexp.MustCompile(`\d+`)
)

// ParsedMilestone is the intermediate representation of one milestone
// block.
type ParsedMilestone struct {
	Index       int
	Title       string
	Produces    []string
	Requires    []int // 1-indexed milestone numbers
	Description string
}

// ParseMilestones parses text in the MILESTONE block format:
//
//	MILESTONE 1: Core data model
//	PRODUCES: goal types, status machine
//	REQUIRES: none
//	DESCRIPTION: Define the goal entity and its lifecycle.
//
// Blocks are separated by "MILESTONE N:" headers; the REQUIRES line
// lists 1-indexed milestone numbers or "none". Unparseable blocks are
// skipped rather than failing the whole document.
func ParseMilestones(text string) []ParsedMilestone {
	var milestones []ParsedMilestone

	headers := milestoneSplitPattern.FindAllStringSubmatchIndex(text, -1)
	for i, h := range headers {
		index, err := strconv.Atoi(text[h[2]:h[3]])
		if err != nil {
			continue
		}

		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		content := strings.TrimSpace(text[h[1]:end])

		lines := strings.SplitN(content, "\n", 2)
		title := strings.TrimSpace(lines[0])
		if title == "" {
			continue
		}

		var produces []string
		if m := producesPattern.FindStringSubmatch(content); m != nil {
			for _, p := range strings.Split(m[1], ",") {
				if p = strings.TrimSpace(p); p != "" {
					produces = append(produces, p)
				}
			}
		}

		var requires []int
		if m := requiresPattern.FindStringSubmatch(content); m != nil {
			req := strings.ToLower(strings.TrimSpace(m[1]))
			if req != "none" {
				for _, n := range numberPattern.FindAllString(req, -1) {
					idx, err := strconv.Atoi(n)
					if err != nil {
						continue
					}
					requires = append(requires, idx)
				}
			}
		}

		description := ""
		if m := descriptionPattern.FindStringSubmatch(content); m != nil {
			description = strings.TrimSpace(m[1])
		}

		milestones = append(milestones, ParsedMilestone{
			Index:       index,
			Title:       title,
			Produces:    produces,
			Requires:    requires,
			Description: description,
		})
	}

	return milestones
}
