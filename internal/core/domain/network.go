package domain

// Encryption is the security suite advertised by a network.
type Encryption int

const (
	EncryptionWPA2 Encryption = iota
	EncryptionWPA3
	EncryptionOpen
)

var encryptionLabels = []string{"WPA2", "WPA3", "Open"}

func (e Encryption) String() string { return enumLabel(e, encryptionLabels, "Encryption") }

// MarshalText encodes the encryption as its display label ("WPA2", "WPA3", "Open").
func (e Encryption) MarshalText() ([]byte, error) {
	return marshalEnum(e, encryptionLabels, "encryption")
}

// UnmarshalText decodes a display label.
func (e *Encryption) UnmarshalText(text []byte) error {
	v, err := parseEnum[Encryption](string(text), encryptionLabels, "encryption")
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// ParseEncryption maps a display label to its Encryption value.
func ParseEncryption(s string) (Encryption, error) {
	return parseEnum[Encryption](s, encryptionLabels, "encryption")
}

// IsOpen reports whether the network accepts clients without a key.
func (e Encryption) IsOpen() bool {
	return e == EncryptionOpen
}

// Network is a single observed access point.
// BSSID is the primary key within a snapshot; SSIDs may repeat across BSSIDs.
type Network struct {
	SSID           string     `json:"ssid"`
	BSSID          string     `json:"bssid"`
	Channel        int        `json:"channel"`
	SignalStrength int        `json:"signalStrength"` // dBm
	Encryption     Encryption `json:"encryption"`
	Clients        int        `json:"clients"`
	Suspicious     bool       `json:"suspicious"`
}
