// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relmigrate/relmigrate/pkg/migrations"
)

func artifact(app, name string, deps ...migrations.Dependency) *Discovered {
	return &Discovered{
		App:  app,
		Name: name,
		Artifact: &migrations.Artifact{
			Name:         name,
			App:          app,
			Dependencies: deps,
		},
	}
}

func TestTopoOrder_LinearChain(t *testing.T) {
	a1 := artifact("blog", "0001_initial")
	a2 := artifact("blog", "0002_add_title", migrations.Dependency{App: "blog", Name: "0001_initial"})

	order, err := topoOrder([]*Discovered{a2, a1})
	require.NoError(t, err)
	require.Len(t, order, 2)
	assert.Equal(t, "0001_initial", order[0].Name)
	assert.Equal(t, "0002_add_title", order[1].Name)
}

func TestTopoOrder_CrossAppDependency(t *testing.T) {
	accounts := artifact("accounts", "0001_initial")
	billing := artifact("billing", "0001_initial", migrations.Dependency{App: "accounts", Name: "0001_initial"})

	order, err := topoOrder([]*Discovered{billing, accounts})
	require.NoError(t, err)
	require.Len(t, order, 2)
	assert.Equal(t, "accounts", order[0].App)
	assert.Equal(t, "billing", order[1].App)
}

func TestTopoOrder_MultipleRoots(t *testing.T) {
	a1 := artifact("blog", "0001_initial")
	a2 := artifact("blog", "0002_also_root")

	_, err := topoOrder([]*Discovered{a1, a2})
	require.Error(t, err)
	var depErr DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "multiple root migrations", depErr.Reason)
}

func TestTopoOrder_NoRoot(t *testing.T) {
	a1 := artifact("blog", "0001_a", migrations.Dependency{App: "blog", Name: "0002_b"})
	a2 := artifact("blog", "0002_b", migrations.Dependency{App: "blog", Name: "0001_a"})

	_, err := topoOrder([]*Discovered{a1, a2})
	require.Error(t, err)
	var depErr DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "no root migration", depErr.Reason)
}

func TestTopoOrder_Cycle(t *testing.T) {
	a1 := artifact("blog", "0001_a")
	a2 := artifact("blog", "0002_b", migrations.Dependency{App: "blog", Name: "0003_c"})
	a3 := artifact("blog", "0003_c", migrations.Dependency{App: "blog", Name: "0002_b"})

	_, err := topoOrder([]*Discovered{a1, a2, a3})
	require.Error(t, err)
	var depErr DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "circular dependency", depErr.Reason)
}

func TestTopoOrder_UnknownDependency(t *testing.T) {
	a1 := artifact("blog", "0001_initial", migrations.Dependency{App: "blog", Name: "missing"})

	_, err := topoOrder([]*Discovered{a1})
	require.Error(t, err)
	var depErr DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "unknown dependency", depErr.Reason)
}
