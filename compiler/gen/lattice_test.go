package gen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tesseradb/tessera/compiler/load"
)

func TestPkLattice(t *testing.T) {
	require := require.New(t)
	table, err := NewTable(testConfig(t), &load.Schema{
		Name: "Account",
		Fields: []*load.Field{
			{Name: "TenantID", Info: strInfo(), Pk: pkIndex(0)},
			{Name: "AccountID", Info: intInfo(), Pk: pkIndex(1)},
			{Name: "Balance", Info: intInfo()},
		},
	})
	require.NoError(err)

	states := table.PkLattice()
	require.Len(states, 3)

	require.Equal("AccountPk0", states[0].TypeName)
	require.Empty(states[0].Populated)
	require.Equal("TenantID", states[0].Next.Name)
	require.False(states[0].Terminal())

	require.Equal("AccountPk1", states[1].TypeName)
	require.Len(states[1].Populated, 1)
	require.Equal("TenantID", states[1].Populated[0].Name)
	require.Equal("AccountID", states[1].Next.Name)

	require.Equal("AccountPk", states[2].TypeName)
	require.Len(states[2].Populated, 2)
	require.True(states[2].Terminal())
}

func TestPkLatticeSingleKey(t *testing.T) {
	require := require.New(t)
	table, err := NewTable(testConfig(t), &load.Schema{
		Name: "User",
		Fields: []*load.Field{
			{Name: "ID", Info: intInfo(), Pk: pkIndex(0)},
			{Name: "Name", Info: strInfo()},
		},
	})
	require.NoError(err)

	// A single-key table has no strictly partial populated state: the
	// empty prefix advances straight to the complete key.
	states := table.PkLattice()
	require.Len(states, 2)
	require.Equal("UserPk0", states[0].TypeName)
	require.Equal("ID", states[0].Next.Name)
	require.Equal("UserPk", states[1].TypeName)
	require.True(states[1].Terminal())
}

func TestPkLatticeKeyOrderOverridesDeclaration(t *testing.T) {
	require := require.New(t)
	table, err := NewTable(testConfig(t), &load.Schema{
		Name: "Event",
		Fields: []*load.Field{
			{Name: "Seq", Info: intInfo(), Pk: pkIndex(1)},
			{Name: "Region", Info: strInfo(), Pk: pkIndex(0)},
		},
	})
	require.NoError(err)

	states := table.PkLattice()
	require.Equal("Region", states[0].Next.Name)
	require.Equal("Seq", states[1].Next.Name)
	require.Equal([]string{"Region", "Seq"}, []string{
		states[2].Populated[0].Name,
		states[2].Populated[1].Name,
	})
}
