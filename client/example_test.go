package client_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/adamwoolhether/genius/client"
)

func ExampleBuild() {
	c, err := client.Build("my-access-token",
		client.WithTimeout(10*time.Second),
		client.WithUserAgent("example/1.0"),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println("client built for", c.BaseURL())
	// Output: client built for https://api.genius.com
}

func ExampleParams_Encode() {
	q, err := client.Params{"text_format": "plain", "per_page": 20, "page": 1}.Encode()
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(q)
	// Output: page=1&per_page=20&text_format=plain
}

func ExampleClient_Do() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/artists/0" {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"meta":{"status":404,"message":"Not found"}}`)
			return
		}
		fmt.Fprint(w, `{"meta":{"status":200}}`)
	}))
	defer ts.Close()

	c, _ := client.Build("my-access-token", client.WithBaseURL(ts.URL))

	body, err := c.Do(context.Background(), client.Descriptor{Path: "/artists/16775"})
	fmt.Println(string(body), err)

	_, err = c.Do(context.Background(), client.Descriptor{Path: "/artists/0"})
	if statusErr, ok := errors.AsType[*client.StatusError](err); ok {
		fmt.Println(statusErr.StatusCode, string(statusErr.Body))
	}
	// Output:
	// {"meta":{"status":200}} <nil>
	// 404 {"meta":{"status":404,"message":"Not found"}}
}

func ExampleClient_Go() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":{"user":{}}}`)
	}))
	defer ts.Close()

	c, _ := client.Build("my-access-token", client.WithBaseURL(ts.URL))

	call := c.Go(context.Background(), client.Descriptor{Path: "/account"})

	body, err := call.Wait()
	fmt.Println(string(body), err)
	// Output: {"response":{"user":{}}} <nil>
}
