// Package superlinkpb holds the wire types and gRPC service
// descriptors for the Driver and Fleet RPC surfaces described in
// proto/superlink.proto. It is hand-authored rather than generated:
// the messages satisfy github.com/gogo/protobuf/proto.Message's
// minimal (Reset/String/ProtoMessage) interface and are carried by a
// custom grpc codec (see codec.go) instead of protoc-gen-go output.
package superlinkpb

// Node is the wire shape of a node reference: a node is either
// identified (Anonymous=false, NodeID!=0) or anonymous
// (Anonymous=true, NodeID=0).
type Node struct {
	NodeID    int64 `protobuf:"varint,1,opt,name=node_id,proto3"`
	Anonymous bool  `protobuf:"varint,2,opt,name=anonymous,proto3"`
}

func (m *Node) Reset()         { *m = Node{} }
func (m *Node) String() string { return protoString(m) }
func (*Node) ProtoMessage()    {}

// TaskError is the wire shape of a task's error payload arm.
type TaskError struct {
	Code    int32  `protobuf:"varint,1,opt,name=code,proto3"`
	Reason  string `protobuf:"bytes,2,opt,name=reason,proto3"`
	Message string `protobuf:"bytes,3,opt,name=message,proto3"`
}

func (m *TaskError) Reset()         { *m = TaskError{} }
func (m *TaskError) String() string { return protoString(m) }
func (*TaskError) ProtoMessage()    {}

// Task is the wire shape of the inner payload carried by both TaskIns
// and TaskRes: the recordset/error payload is a tagged variant
// flattened onto the wire as two optional fields of which exactly one
// is populated. group_id/run_id live one level up, on the TaskIns/
// TaskRes envelope (spec.md §6), not here.
type Task struct {
	Producer    *Node      `protobuf:"bytes,1,opt,name=producer,proto3"`
	Consumer    *Node      `protobuf:"bytes,2,opt,name=consumer,proto3"`
	CreatedAt   float64    `protobuf:"fixed64,3,opt,name=created_at,proto3"`
	DeliveredAt string     `protobuf:"bytes,4,opt,name=delivered_at,proto3"`
	PushedAt    float64    `protobuf:"fixed64,5,opt,name=pushed_at,proto3"`
	TTL         float64    `protobuf:"fixed64,6,opt,name=ttl,proto3"`
	Ancestry    []string   `protobuf:"bytes,7,rep,name=ancestry,proto3"`
	TaskType    string     `protobuf:"bytes,8,opt,name=task_type,proto3"`
	Recordset   []byte     `protobuf:"bytes,9,opt,name=recordset,proto3"`
	Error       *TaskError `protobuf:"bytes,10,opt,name=error,proto3"`
}

func (m *Task) Reset()         { *m = Task{} }
func (m *Task) String() string { return protoString(m) }
func (*Task) ProtoMessage()    {}

// TaskIns is the envelope around a Task as it appears in PushTaskIns
// requests (TaskID empty) and PullTaskIns responses (TaskID assigned).
type TaskIns struct {
	TaskID  string `protobuf:"bytes,1,opt,name=task_id,proto3"`
	GroupID string `protobuf:"bytes,2,opt,name=group_id,proto3"`
	RunID   int64  `protobuf:"varint,3,opt,name=run_id,proto3"`
	Task    *Task  `protobuf:"bytes,4,opt,name=task,proto3"`
}

func (m *TaskIns) Reset()         { *m = TaskIns{} }
func (m *TaskIns) String() string { return protoString(m) }
func (*TaskIns) ProtoMessage()    {}

// TaskRes is the envelope around a Task, mirroring TaskIns for the
// result half of the protocol.
type TaskRes struct {
	TaskID  string `protobuf:"bytes,1,opt,name=task_id,proto3"`
	GroupID string `protobuf:"bytes,2,opt,name=group_id,proto3"`
	RunID   int64  `protobuf:"varint,3,opt,name=run_id,proto3"`
	Task    *Task  `protobuf:"bytes,4,opt,name=task,proto3"`
}

func (m *TaskRes) Reset()         { *m = TaskRes{} }
func (m *TaskRes) String() string { return protoString(m) }
func (*TaskRes) ProtoMessage()    {}

// --- Driver service messages ---

type CreateRunRequest struct{}

func (m *CreateRunRequest) Reset()         { *m = CreateRunRequest{} }
func (m *CreateRunRequest) String() string { return protoString(m) }
func (*CreateRunRequest) ProtoMessage()    {}

type CreateRunResponse struct {
	RunID int64 `protobuf:"varint,1,opt,name=run_id,proto3"`
}

func (m *CreateRunResponse) Reset()         { *m = CreateRunResponse{} }
func (m *CreateRunResponse) String() string { return protoString(m) }
func (*CreateRunResponse) ProtoMessage()    {}

type GetNodesRequest struct {
	RunID int64 `protobuf:"varint,1,opt,name=run_id,proto3"`
}

func (m *GetNodesRequest) Reset()         { *m = GetNodesRequest{} }
func (m *GetNodesRequest) String() string { return protoString(m) }
func (*GetNodesRequest) ProtoMessage()    {}

type GetNodesResponse struct {
	Nodes []*Node `protobuf:"bytes,1,rep,name=nodes,proto3"`
}

func (m *GetNodesResponse) Reset()         { *m = GetNodesResponse{} }
func (m *GetNodesResponse) String() string { return protoString(m) }
func (*GetNodesResponse) ProtoMessage()    {}

type PushTaskInsRequest struct {
	TaskInsList []*TaskIns `protobuf:"bytes,1,rep,name=task_ins_list,proto3"`
}

func (m *PushTaskInsRequest) Reset()         { *m = PushTaskInsRequest{} }
func (m *PushTaskInsRequest) String() string { return protoString(m) }
func (*PushTaskInsRequest) ProtoMessage()    {}

type PushTaskInsResponse struct {
	TaskIDs []string `protobuf:"bytes,1,rep,name=task_ids,proto3"`
}

func (m *PushTaskInsResponse) Reset()         { *m = PushTaskInsResponse{} }
func (m *PushTaskInsResponse) String() string { return protoString(m) }
func (*PushTaskInsResponse) ProtoMessage()    {}

type PullTaskResRequest struct {
	TaskIDs []string `protobuf:"bytes,1,rep,name=task_ids,proto3"`
}

func (m *PullTaskResRequest) Reset()         { *m = PullTaskResRequest{} }
func (m *PullTaskResRequest) String() string { return protoString(m) }
func (*PullTaskResRequest) ProtoMessage()    {}

type PullTaskResResponse struct {
	TaskResList []*TaskRes `protobuf:"bytes,1,rep,name=task_res_list,proto3"`
}

func (m *PullTaskResResponse) Reset()         { *m = PullTaskResResponse{} }
func (m *PullTaskResResponse) String() string { return protoString(m) }
func (*PullTaskResResponse) ProtoMessage()    {}

// --- Fleet service messages ---

type CreateNodeRequest struct {
	PingInterval float64 `protobuf:"fixed64,1,opt,name=ping_interval,proto3"`
}

func (m *CreateNodeRequest) Reset()         { *m = CreateNodeRequest{} }
func (m *CreateNodeRequest) String() string { return protoString(m) }
func (*CreateNodeRequest) ProtoMessage()    {}

type CreateNodeResponse struct {
	Node *Node `protobuf:"bytes,1,opt,name=node,proto3"`
}

func (m *CreateNodeResponse) Reset()         { *m = CreateNodeResponse{} }
func (m *CreateNodeResponse) String() string { return protoString(m) }
func (*CreateNodeResponse) ProtoMessage()    {}

type DeleteNodeRequest struct {
	Node *Node `protobuf:"bytes,1,opt,name=node,proto3"`
}

func (m *DeleteNodeRequest) Reset()         { *m = DeleteNodeRequest{} }
func (m *DeleteNodeRequest) String() string { return protoString(m) }
func (*DeleteNodeRequest) ProtoMessage()    {}

type DeleteNodeResponse struct{}

func (m *DeleteNodeResponse) Reset()         { *m = DeleteNodeResponse{} }
func (m *DeleteNodeResponse) String() string { return protoString(m) }
func (*DeleteNodeResponse) ProtoMessage()    {}

type PullTaskInsRequest struct {
	Node    *Node    `protobuf:"bytes,1,opt,name=node,proto3"`
	TaskIDs []string `protobuf:"bytes,2,rep,name=task_ids,proto3"`
}

func (m *PullTaskInsRequest) Reset()         { *m = PullTaskInsRequest{} }
func (m *PullTaskInsRequest) String() string { return protoString(m) }
func (*PullTaskInsRequest) ProtoMessage()    {}

type PullTaskInsResponse struct {
	TaskInsList []*TaskIns `protobuf:"bytes,1,rep,name=task_ins_list,proto3"`
}

func (m *PullTaskInsResponse) Reset()         { *m = PullTaskInsResponse{} }
func (m *PullTaskInsResponse) String() string { return protoString(m) }
func (*PullTaskInsResponse) ProtoMessage()    {}

type PushTaskResRequest struct {
	TaskResList []*TaskRes `protobuf:"bytes,1,rep,name=task_res_list,proto3"`
}

func (m *PushTaskResRequest) Reset()         { *m = PushTaskResRequest{} }
func (m *PushTaskResRequest) String() string { return protoString(m) }
func (*PushTaskResRequest) ProtoMessage()    {}

// Reconnect names the wire shape of PushTaskRes's reconnect hint.
type Reconnect struct {
	Reconnect int64 `protobuf:"varint,1,opt,name=reconnect,proto3"`
}

func (m *Reconnect) Reset()         { *m = Reconnect{} }
func (m *Reconnect) String() string { return protoString(m) }
func (*Reconnect) ProtoMessage()    {}

type PushTaskResResponse struct {
	Results map[string]int32 `protobuf:"bytes,1,rep,name=results,proto3" protobuf_key:"bytes,1,opt,name=key,proto3" protobuf_val:"varint,2,opt,name=value,proto3"`
	Reconnect *Reconnect `protobuf:"bytes,2,opt,name=reconnect,proto3"`
}

func (m *PushTaskResResponse) Reset()         { *m = PushTaskResResponse{} }
func (m *PushTaskResResponse) String() string { return protoString(m) }
func (*PushTaskResResponse) ProtoMessage()    {}

type PingRequest struct {
	Node         *Node   `protobuf:"bytes,1,opt,name=node,proto3"`
	PingInterval float64 `protobuf:"fixed64,2,opt,name=ping_interval,proto3"`
}

func (m *PingRequest) Reset()         { *m = PingRequest{} }
func (m *PingRequest) String() string { return protoString(m) }
func (*PingRequest) ProtoMessage()    {}

type PingResponse struct {
	Success bool `protobuf:"varint,1,opt,name=success,proto3"`
}

func (m *PingResponse) Reset()         { *m = PingResponse{} }
func (m *PingResponse) String() string { return protoString(m) }
func (*PingResponse) ProtoMessage()    {}
