package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
)

// LogMessage is the wire form of a locker log entry on the broker
type LogMessage struct {
	ID                 string    `json:"id"`
	LockerID           string    `json:"lockerId"`
	TransactionID      string    `json:"transactionId,omitempty"`
	UserID             string    `json:"userId,omitempty"`
	Action             string    `json:"action"`
	Timestamp          time.Time `json:"timestamp"`
	ResultingAvailable int       `json:"resultingAvailable"`
	ResultingStatus    string    `json:"resultingStatus"`
	Note               string    `json:"note,omitempty"`
}

// EncodeLog marshals an entry
func EncodeLog(log *entity.LockerLog) ([]byte, error) {
	return json.Marshal(LogMessage{
		ID:                 log.ID,
		LockerID:           log.LockerID,
		TransactionID:      log.TransactionID,
		UserID:             log.UserID,
		Action:             string(log.Action),
		Timestamp:          log.Timestamp,
		ResultingAvailable: log.ResultingAvailable,
		ResultingStatus:    string(log.ResultingStatus),
		Note:               log.Note,
	})
}

// DecodeLog unmarshals and checks an entry
func DecodeLog(body []byte) (*entity.LockerLog, error) {
	var msg LogMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if msg.ID == "" || msg.LockerID == "" {
		return nil, fmt.Errorf("message without id or locker id")
	}
	action := entity.LockerAction(msg.Action)
	if !action.IsValid() {
		return nil, fmt.Errorf("unknown action %q", msg.Action)
	}

	return &entity.LockerLog{
		ID:                 msg.ID,
		LockerID:           msg.LockerID,
		TransactionID:      msg.TransactionID,
		UserID:             msg.UserID,
		Action:             action,
		Timestamp:          msg.Timestamp,
		ResultingAvailable: msg.ResultingAvailable,
		ResultingStatus:    entity.LockerStatus(msg.ResultingStatus),
		Note:               msg.Note,
	}, nil
}
