package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wascc/lattice-client/protocol"
)

func TestAggregate_Deterministic(t *testing.T) {
	replies := map[string]*protocol.ReplyRecord{
		"h3": {HostID: "h3", Inventory: &protocol.HostInventory{ID: "h3"}},
		"h1": {HostID: "h1", Inventory: &protocol.HostInventory{ID: "h1"}},
		"h2": {HostID: "h2", Inventory: &protocol.HostInventory{ID: "h2"}},
	}

	first := Aggregate(replies)
	require.Len(t, first, 3)
	assert.Equal(t, "h1", first[0].ID)
	assert.Equal(t, "h2", first[1].ID)
	assert.Equal(t, "h3", first[2].ID)

	// Map iteration order varies between runs; the output must not.
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Aggregate(replies))
	}
}

func TestAggregate_NormalizesBareListReplies(t *testing.T) {
	replies := map[string]*protocol.ReplyRecord{
		"h1": {
			HostID:    "h1",
			Workloads: []protocol.WorkloadDescriptor{{ID: "a", Kind: protocol.WorkloadActor}},
		},
		"h2": {
			HostID: "h2",
			Links:  []protocol.LinkBinding{{WorkloadID: "a", ProviderID: "p", ContractID: "wascc:messaging"}},
		},
	}

	hosts := Aggregate(replies)
	require.Len(t, hosts, 2)
	assert.Equal(t, "h1", hosts[0].ID)
	assert.Len(t, hosts[0].Workloads, 1)
	assert.Equal(t, "h2", hosts[1].ID)
	assert.Len(t, hosts[1].Links, 1)
}

func TestAggregate_FillsMissingInventoryID(t *testing.T) {
	replies := map[string]*protocol.ReplyRecord{
		"h1": {HostID: "h1", Inventory: &protocol.HostInventory{UptimeMS: 1234}},
	}

	hosts := Aggregate(replies)
	require.Len(t, hosts, 1)
	assert.Equal(t, "h1", hosts[0].ID)
	assert.Equal(t, int64(1234), hosts[0].UptimeMS)
}

func TestAggregate_Empty(t *testing.T) {
	hosts := Aggregate(map[string]*protocol.ReplyRecord{})
	assert.NotNil(t, hosts)
	assert.Empty(t, hosts)
}
