package realtime

import "testing"

func TestDecodeEvent_FullEntityPayload(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type": "TaskUpdated", "payload": {"Id": 101, "status": "done"}}`))
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if ev.Kind != KindTask || ev.Action != ActionUpdated {
		t.Fatalf("event = %+v", ev)
	}
	if ev.ID != 101 {
		t.Fatalf("id = %d", ev.ID)
	}
	if ev.Payload == nil || ev.Payload["status"] != "done" {
		t.Fatalf("payload = %v", ev.Payload)
	}
}

func TestDecodeEvent_BareIDDelete(t *testing.T) {
	for _, frame := range []string{
		`{"type": "TaskDeleted", "payload": 7}`,
		`{"type": "TaskDeleted", "payload": "7"}`,
	} {
		ev, err := DecodeEvent([]byte(frame))
		if err != nil {
			t.Fatalf("DecodeEvent(%s): %v", frame, err)
		}
		if ev.Action != ActionDeleted || ev.ID != 7 {
			t.Fatalf("event = %+v", ev)
		}
		if ev.Payload != nil {
			t.Fatalf("bare-id frame should carry no payload map")
		}
	}
}

func TestDecodeEvent_WorkspaceMapsToDepartment(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type": "WorkspaceCreated", "payload": {"id": 3, "name": "Ops"}}`))
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if ev.Kind != KindDepartment || ev.Action != ActionCreated {
		t.Fatalf("event = %+v", ev)
	}
}

func TestDecodeEvent_Malformed(t *testing.T) {
	for _, frame := range []string{
		`not json`,
		`{"type": "TaskExploded", "payload": {"id": 1}}`,
		`{"payload": {"id": 1}}`,
		`{"type": "TaskCreated"}`,
		`{"type": "TaskCreated", "payload": {"title": "no id"}}`,
		`{"type": "TaskCreated", "payload": {"id": 0}}`,
	} {
		if _, err := DecodeEvent([]byte(frame)); err == nil {
			t.Fatalf("expected error for %s", frame)
		}
	}
}
