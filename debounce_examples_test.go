package debounce_test

import (
	"fmt"
	"strings"
	"time"

	"github.com/romdo/go-debounce/v2"
)

func ExampleNew() {
	// Create a new debouncer that will wait 100 milliseconds since the last
	// call before calling the callback function.
	debounced, _ := debounce.New(100*time.Millisecond, func() {
		fmt.Println("Hello, world!")
	})

	debounced()
	time.Sleep(75 * time.Millisecond) // +75ms = 75ms
	debounced()
	time.Sleep(75 * time.Millisecond) // +75ms = 150ms
	debounced()
	time.Sleep(150 * time.Millisecond) // +150ms = 300ms, trailing at 250ms

	debounced()
	time.Sleep(75 * time.Millisecond) // +75ms = 375ms
	debounced()
	time.Sleep(75 * time.Millisecond) // +75ms = 450ms
	debounced()
	time.Sleep(150 * time.Millisecond) // +150ms = 600ms, trailing at 550ms

	// Output:
	// Hello, world!
	// Hello, world!
}

func ExampleNew_withCancel() {
	debounced, cancel := debounce.New(100*time.Millisecond, func() {
		fmt.Println("Hello, world!")
	})

	debounced()
	time.Sleep(50 * time.Millisecond)
	cancel()
	time.Sleep(150 * time.Millisecond) // nothing left to trigger

	debounced()
	time.Sleep(150 * time.Millisecond) // trailing at 250ms

	// Output:
	// Hello, world!
}

func ExampleNewDebouncer() {
	search, err := debounce.NewDebouncer(
		300*time.Millisecond,
		func(query string) ([]string, error) {
			fmt.Printf("searching for %q\n", query)

			return strings.Fields(query), nil
		},
	)
	if err != nil {
		panic(err)
	}

	for _, q := range []string{"g", "go", "go deb", "go debounce"} {
		res, _ := search.Invoke(q)
		fmt.Println("valid:", res.Valid)
	}

	res, _ := search.Flush()
	fmt.Println("result:", res.Value)
	fmt.Println("pending:", search.Pending())

	// Output:
	// valid: false
	// valid: false
	// valid: false
	// valid: false
	// searching for "go debounce"
	// result: [go debounce]
	// pending: false
}

func ExampleNewDebouncer_withLeading() {
	save, err := debounce.NewDebouncer(
		time.Second,
		func(doc string) (int, error) {
			fmt.Println("saving", doc)

			return len(doc), nil
		},
		debounce.WithLeading(true),
	)
	if err != nil {
		panic(err)
	}

	res, _ := save.Invoke("draft 1") // leading trigger
	fmt.Println("saved bytes:", res.Value)

	res, _ = save.Invoke("draft 2") // cached result, trailing call owed
	fmt.Println("saved bytes:", res.Value)

	save.Cancel() // discard the owed trailing call
	fmt.Println("pending:", save.Pending())

	// Output:
	// saving draft 1
	// saved bytes: 7
	// saved bytes: 7
	// pending: false
}

func ExampleNewThrottler() {
	scroll, err := debounce.NewThrottler(
		100*time.Millisecond,
		func(offset int) (int, error) {
			fmt.Println("measuring at", offset)

			return offset, nil
		},
	)
	if err != nil {
		panic(err)
	}

	for offset := 0; offset <= 40; offset += 10 {
		_, _ = scroll.Invoke(offset)
	}
	_, _ = scroll.Flush()

	// Output:
	// measuring at 0
	// measuring at 40
}

func ExampleNewMutable() {
	debounced, _ := debounce.NewMutable(100 * time.Millisecond)

	debounced(func() { fmt.Println("first") })
	time.Sleep(50 * time.Millisecond)
	debounced(func() { fmt.Println("second") })
	time.Sleep(150 * time.Millisecond) // trailing at 150ms

	// Output:
	// second
}

func ExampleConfig() {
	var conf debounce.Config
	err := conf.Read(strings.NewReader("wait: 250ms\nmax_wait: 1s\n"))
	if err != nil {
		panic(err)
	}

	d, err := debounce.NewFromConfig(conf, func(n int) (int, error) {
		fmt.Println("invoked with", n)

		return n, nil
	})
	if err != nil {
		panic(err)
	}

	_, _ = d.Invoke(1)
	_, _ = d.Invoke(2)
	_, _ = d.Flush()

	// Output:
	// invoked with 2
}
