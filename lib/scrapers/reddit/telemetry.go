package reddit

import (
	"personagen/lib/restyutil"

	"github.com/go-resty/resty/v2"
)

var instrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput sets where raw HTTP exchanges are dumped for
// debugging. it must be called before NewClient to take effect.
func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	instrumentOutput = out
}

func restyInstrument(client *resty.Client) {
	restyutil.InstrumentClient(client, instrumentOutput)
}
