package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/mathi-naickan/opensaf-sub000/internal/model"
	"github.com/stretchr/testify/require"
)

func TestInProcTransportDeliversInOrder(t *testing.T) {
	tr := NewInProcTransport([]model.NodeName{"node-1"})
	tr.Start()
	defer tr.Stop()

	ctx := context.Background()
	require.NoError(t, tr.Send(ctx, "node-1", Order{Kind: OrderAssign, SU: "su-1", SI: "si-1", HA: model.HAActive}))
	require.NoError(t, tr.Send(ctx, "node-1", Order{Kind: OrderModify, SU: "su-1", SI: "si-1", HA: model.HAStandby}))

	first := waitReply(t, tr)
	require.Equal(t, OrderAssign, first.Kind)

	second := waitReply(t, tr)
	require.Equal(t, OrderModify, second.Kind)
}

func TestInProcTransportDropNext(t *testing.T) {
	tr := NewInProcTransport([]model.NodeName{"node-1"})
	tr.Start()
	defer tr.Stop()

	tr.DropNext("node-1", 1)

	ctx := context.Background()
	require.NoError(t, tr.Send(ctx, "node-1", Order{Kind: OrderAssign, SU: "su-1", SI: "si-1"}))
	require.NoError(t, tr.Send(ctx, "node-1", Order{Kind: OrderModify, SU: "su-1", SI: "si-1"}))

	reply := waitReply(t, tr)
	require.Equal(t, OrderModify, reply.Kind, "the first order should have been dropped, not acked")
}

func TestInProcTransportSendToUnknownNodeNoops(t *testing.T) {
	tr := NewInProcTransport(nil)
	tr.Start()
	defer tr.Stop()

	err := tr.Send(context.Background(), "ghost-node", Order{Kind: OrderAssign})
	require.NoError(t, err)
}

func waitReply(t *testing.T, tr *InProcTransport) Reply {
	t.Helper()
	select {
	case r := <-tr.Subscribe():
		return r
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reply")
		return Reply{}
	}
}
