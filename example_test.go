// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package disruptor_test

import (
	"fmt"

	"code.hybscloud.com/disruptor"
)

type order struct {
	id    int64
	price float64
}

func Example() {
	d, err := disruptor.New(8, func() order { return order{} }).Build()
	if err != nil {
		panic(err)
	}

	received := make([]order, 0, 3)
	d.HandleEventsWith(disruptor.EventHandlerFunc[order](func(seq int64, o *order) {
		received = append(received, *o)
	}))
	if err := d.Start(); err != nil {
		panic(err)
	}

	for i := range 3 {
		d.PublishEvent(func(seq int64, o *order) {
			o.id = seq
			o.price = float64(100 + i)
		}, 1)
	}
	d.Drain()
	d.Shutdown()

	for _, o := range received {
		fmt.Printf("order %d at %.0f\n", o.id, o.price)
	}
	// Output:
	// order 0 at 100
	// order 1 at 101
	// order 2 at 102
}
