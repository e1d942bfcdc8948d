//go:build !tinygo && !cgo

package hal

import "errors"

func openDeviceMic(_ uint32, _ Logger) (Microphone, error) {
	return nil, errors.New("mic: device capture requires cgo (build/run with CGO_ENABLED=1)")
}
