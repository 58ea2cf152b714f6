package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PortProtocol is the transport protocol for a forwarded port.
type PortProtocol string

const (
	ProtocolTCP PortProtocol = "tcp"
	ProtocolUDP PortProtocol = "udp"
)

// ForwardPort is a fully resolved port forward.
type ForwardPort struct {
	LocalPort     uint16       `json:"localPort"`
	ContainerPort uint16       `json:"containerPort"`
	Protocol      PortProtocol `json:"protocol"`
}

// PortSpec is a forwardPorts entry as authored: a bare number, a
// "local:container" string, or a detailed object.
type PortSpec struct {
	number   *uint16
	str      *string
	detailed *detailedPort
}

type detailedPort struct {
	LocalPort     uint16       `json:"localPort"`
	ContainerPort uint16       `json:"containerPort"`
	Protocol      PortProtocol `json:"protocol,omitempty"`
}

// UnmarshalJSON accepts the three wire forms.
func (p *PortSpec) UnmarshalJSON(data []byte) error {
	switch firstNonSpace(data) {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PortSpec{str: &s}
		return nil
	case '{':
		var d detailedPort
		if err := json.Unmarshal(data, &d); err != nil {
			return err
		}
		*p = PortSpec{detailed: &d}
		return nil
	default:
		var n uint16
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("forward port must be a number, string, or object, got %s", data)
		}
		*p = PortSpec{number: &n}
		return nil
	}
}

// MarshalJSON writes back the original wire form.
func (p PortSpec) MarshalJSON() ([]byte, error) {
	switch {
	case p.number != nil:
		return json.Marshal(*p.number)
	case p.str != nil:
		return json.Marshal(*p.str)
	case p.detailed != nil:
		return json.Marshal(*p.detailed)
	}
	return []byte("null"), nil
}

// Normalize converts the authored form into a ForwardPort.
// A bare number forwards the same port on both sides over TCP. A string is
// split on the first colon into local and container halves; without a
// colon both halves are the whole string. The detailed object is taken
// verbatim, defaulting the protocol to TCP.
func (p PortSpec) Normalize() (ForwardPort, error) {
	switch {
	case p.number != nil:
		return ForwardPort{LocalPort: *p.number, ContainerPort: *p.number, Protocol: ProtocolTCP}, nil

	case p.str != nil:
		value := strings.TrimSpace(*p.str)
		if value == "" {
			return ForwardPort{}, &ConfigError{
				Detail: fmt.Sprintf("invalid forward port value %q: value must not be empty", *p.str),
			}
		}

		localPart, containerPart, found := strings.Cut(value, ":")
		if !found {
			containerPart = localPart
		}

		containerPort, err := parsePort(containerPart)
		if err != nil {
			return ForwardPort{}, &ConfigError{
				Detail: fmt.Sprintf("invalid forward port value %q: container port: %v", *p.str, err),
			}
		}
		localPort, err := parsePort(localPart)
		if err != nil {
			return ForwardPort{}, &ConfigError{
				Detail: fmt.Sprintf("invalid forward port value %q: local port: %v", *p.str, err),
			}
		}

		return ForwardPort{LocalPort: localPort, ContainerPort: containerPort, Protocol: ProtocolTCP}, nil

	case p.detailed != nil:
		protocol := p.detailed.Protocol
		if protocol == "" {
			protocol = ProtocolTCP
		}
		if protocol != ProtocolTCP && protocol != ProtocolUDP {
			return ForwardPort{}, &ConfigError{
				Detail: fmt.Sprintf("invalid forward port protocol %q: must be tcp or udp", protocol),
			}
		}
		return ForwardPort{
			LocalPort:     p.detailed.LocalPort,
			ContainerPort: p.detailed.ContainerPort,
			Protocol:      protocol,
		}, nil
	}

	return ForwardPort{}, &ConfigError{Detail: "empty forward port entry"}
}

func parsePort(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, err
	}
	return uint16(n), nil
}
