// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"
	"sort"
	"strings"
)

// CycleError is raised when two or more added models depend on each other
// through non-nullable foreign keys, with no nullable FK available to break
// the cycle.
type CycleError struct {
	Models []string
}

func (e CycleError) Error() string {
	models := append([]string(nil), e.Models...)
	sort.Strings(models)
	return fmt.Sprintf("cannot order model creation: cycle of non-nullable foreign keys among %s", strings.Join(models, ", "))
}
