// Package rtpr describes the value space of the rtp.*/rtcp.* attribute
// namespace the query parser accepts. It has no role in live media
// handling — callsearch never touches an RTP packet stream, only
// already-indexed RTPR report documents (spec.md §3) — but the namespace
// it validates/describes is grounded on the teacher's real RTP/SDP
// handling (internal/rtpmanager/media/rtp.go's pion/rtp usage,
// services/rtpmanager/sdp's pion/sdp/v3 usage).
package rtpr

import (
	"fmt"
	"strings"

	"github.com/pion/rtp"
	"github.com/pion/sdp/v3"
)

// ValidPayloadType reports whether pt is a syntactically valid RTP payload
// type, per rtp.Header's 7-bit PayloadType field.
func ValidPayloadType(pt int) bool {
	var h rtp.Header
	h.PayloadType = uint8(pt)
	return pt >= 0 && pt <= 127 && int(h.PayloadType) == pt
}

// CodecsFromSDP maps payload type (as found in an "a=rtpmap" line) to
// codec name, for a single SDP body. No other package calls it; it is
// exercised only by this package's tests.
func CodecsFromSDP(body []byte) (map[string]string, error) {
	var sd sdp.SessionDescription
	if err := sd.Unmarshal(body); err != nil {
		return nil, fmt.Errorf("rtpr: parse sdp: %w", err)
	}

	out := make(map[string]string)
	for _, md := range sd.MediaDescriptions {
		for _, attr := range md.Attributes {
			if attr.Key != "rtpmap" {
				continue
			}
			fields := strings.SplitN(attr.Value, " ", 2)
			if len(fields) != 2 {
				continue
			}
			out[fields[0]] = fields[1]
		}
	}
	return out, nil
}
