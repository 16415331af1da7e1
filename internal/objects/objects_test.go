package objects

import "testing"

func TestNodeRefValidate(t *testing.T) {
	if err := Identified(NodeID(1)).Validate(); err != nil {
		t.Errorf("identified(1) should validate, got %v", err)
	}
	if err := Anonymous().Validate(); err != nil {
		t.Errorf("anonymous() should validate, got %v", err)
	}
	if err := (NodeRef{}).Validate(); err == nil {
		t.Error("zero-value NodeRef (identified with id=0) should not validate")
	}
}

func TestNodeRefAccessors(t *testing.T) {
	id := Identified(NodeID(7))
	if id.IsAnonymous() {
		t.Error("Identified(7) reports anonymous")
	}
	if id.ID() != 7 {
		t.Errorf("ID() = %d, want 7", id.ID())
	}

	anon := Anonymous()
	if !anon.IsAnonymous() {
		t.Error("Anonymous() does not report anonymous")
	}
	if anon.ID() != 0 {
		t.Errorf("Anonymous().ID() = %d, want 0", anon.ID())
	}
}

func TestPayloadValidateExclusivity(t *testing.T) {
	cases := []struct {
		name    string
		payload Payload
		wantErr bool
	}{
		{"recordset only", Payload{Recordset: []byte("x")}, false},
		{"error only", Payload{Error: &ErrorRecord{Code: ErrCodeUnknown}}, false},
		{"neither", Payload{}, true},
		{"both", Payload{Recordset: []byte("x"), Error: &ErrorRecord{}}, true},
	}
	for _, c := range cases {
		err := c.payload.Validate()
		if (err != nil) != c.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", c.name, err, c.wantErr)
		}
	}
}

func TestTaskIsDelivered(t *testing.T) {
	undelivered := Task{}
	if undelivered.IsDelivered() {
		t.Error("zero-value Task reports delivered")
	}
	delivered := Task{DeliveredAt: "2024-01-01T00:00:00Z"}
	if !delivered.IsDelivered() {
		t.Error("Task with DeliveredAt set reports undelivered")
	}
}
