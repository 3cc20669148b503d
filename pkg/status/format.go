// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package status

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"
)

// summaryOrder is the row order of the summary table
var summaryOrder = []Outcome{
	OutcomeRenamed,
	OutcomeDryRun,
	OutcomeSkipped,
	OutcomeFiltered,
	OutcomeFailed,
}

// 🎯 FormatOutcome renders an outcome with its status symbol
func FormatOutcome(o Outcome) string {
	switch o {
	case OutcomeRenamed:
		return color.GreenString("✓ %s", o)
	case OutcomeDryRun:
		return color.YellowString("~ %s", o)
	case OutcomeFailed:
		return color.RedString("✗ %s", o)
	default:
		return color.HiBlackString("- %s", o)
	}
}

// 📊 Summary renders outcome counts, followed by one row per failed key
func (t *Tracker) Summary() (string, error) {
	counts := t.Counts()

	data := pterm.TableData{{"Outcome", "Keys"}}
	for _, o := range summaryOrder {
		if counts[o] == 0 {
			continue
		}
		data = append(data, []string{FormatOutcome(o), strconv.Itoa(counts[o])})
	}
	if len(data) == 1 {
		data = append(data, []string{FormatOutcome(OutcomeUnknown), "0"})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", errors.Errorf("rendering summary: %w", err)
	}

	failed := t.Failed()
	if len(failed) == 0 {
		return table + "\n", nil
	}

	rows := pterm.TableData{{"Key", "Error"}}
	for _, r := range failed {
		rows = append(rows, []string{r.Key, fmt.Sprint(r.Err)})
	}
	failures, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
	if err != nil {
		return "", errors.Errorf("rendering failures: %w", err)
	}

	return table + "\n\n" + failures + "\n", nil
}
