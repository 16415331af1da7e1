package superlinkpb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGogoCodecRoundTripsTaskIns(t *testing.T) {
	c := gogoCodec{}
	in := &TaskIns{
		TaskID:  "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		GroupID: "g1",
		RunID:   42,
		Task: &Task{
			Producer:  &Node{NodeID: 1},
			Consumer:  &Node{Anonymous: true},
			CreatedAt: 100.5,
			TTL:       30,
			TaskType:  "demo",
			Recordset: []byte("hello"),
		},
	}

	data, err := c.Marshal(in)
	require.NoError(t, err)

	out := &TaskIns{}
	require.NoError(t, c.Unmarshal(data, out))

	require.Equal(t, in.TaskID, out.TaskID)
	require.Equal(t, in.GroupID, out.GroupID)
	require.Equal(t, in.RunID, out.RunID)
	require.Equal(t, in.Task.Producer.NodeID, out.Task.Producer.NodeID)
	require.Equal(t, in.Task.Consumer.Anonymous, out.Task.Consumer.Anonymous)
	require.Equal(t, in.Task.CreatedAt, out.Task.CreatedAt)
	require.Equal(t, in.Task.Recordset, out.Task.Recordset)
}

func TestGogoCodecRoundTripsPushTaskResResponse(t *testing.T) {
	c := gogoCodec{}
	in := &PushTaskResResponse{
		Results:   map[string]int32{"aaaa": 0, "bbbb": 1},
		Reconnect: &Reconnect{Reconnect: 5},
	}

	data, err := c.Marshal(in)
	require.NoError(t, err)

	out := &PushTaskResResponse{}
	require.NoError(t, c.Unmarshal(data, out))

	require.Equal(t, in.Results, out.Results)
	require.Equal(t, in.Reconnect.Reconnect, out.Reconnect.Reconnect)
}

func TestGogoCodecRejectsNonProtoMessage(t *testing.T) {
	c := gogoCodec{}
	_, err := c.Marshal("not a proto message")
	require.Error(t, err)
}

func TestCodecNameIsProto(t *testing.T) {
	require.Equal(t, "proto", gogoCodec{}.Name())
}
