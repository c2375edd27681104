package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/KarpelesLab/pjson"
	"github.com/KarpelesLab/restclient"
)

// fetch a single URL and print its decoded body

var (
	method      = flag.String("method", "GET", "HTTP method")
	params      = flag.String("params", "", "query parameters, as JSON or url encoded")
	body        = flag.String("body", "", "request body")
	contentType = flag.String("content-type", "", "request body content type")
	shape       = flag.String("shape", "text", "how to decode the response: text, object, array, nested, bytes or result")
	arrayField  = flag.String("array-field", "", "array field name for -shape nested")
	countField  = flag.String("count-field", "", "count field name for -shape nested")
	token       = flag.String("token", "", "bearer token")
	apiKey      = flag.String("apikey", "", "sign the request with an API key, as key_id:secret")
	timeout     = flag.Duration("timeout", 30*time.Second, "request timeout")
	debug       = flag.Bool("debug", false, "enable debug logging")
)

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		log.Printf("an URL is required")
		flag.Usage()
		os.Exit(1)
	}
	restclient.Debug = *debug

	req, err := prepare(flag.Arg(0), flag.Args()[1:])
	if err != nil {
		log.Printf("invalid request: %s", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if *token != "" {
		ctx = (&restclient.Token{AccessToken: *token}).Use(ctx)
	}
	if *apiKey != "" {
		id, secret, _ := strings.Cut(*apiKey, ":")
		k, err := restclient.NewApiKey(id, secret)
		if err != nil {
			log.Printf("invalid API key: %s", err)
			os.Exit(1)
		}
		ctx = k.Use(ctx)
	}

	if err := req.Send(ctx).Wait(ctx); err != nil {
		log.Printf("request did not complete: %s", err)
		os.Exit(1)
	}

	if err := output(req); err != nil {
		log.Printf("%s", err)
		os.Exit(1)
	}
}

func prepare(base string, paths []string) (*restclient.Request, error) {
	b := restclient.NewBuilder(strings.ToUpper(*method), base, paths...)

	if p := *params; p != "" {
		var q *restclient.QueryParams
		var err error
		if p[0] == '{' {
			// json
			var m map[string]any
			if err = pjson.Unmarshal([]byte(p), &m); err != nil {
				return nil, err
			}
			q, err = restclient.QueryParamsFromMap(m)
		} else {
			// url encoded
			q, err = restclient.ParseQueryParams(p)
		}
		if err != nil {
			return nil, err
		}
		b.SetQueryParams(q)
	}

	if *body != "" {
		b.SetBodyText(*body, *contentType)
	}

	return restclient.NewRequest(b), nil
}

func output(req *restclient.Request) error {
	switch *shape {
	case "text":
		return printResult(req.DecodeText(nil))
	case "result":
		return printResult(req.Result(nil))
	case "object":
		return printResult(restclient.DecodeObject[any](req, nil))
	case "array":
		return printResult(restclient.DecodeArray[any](req, nil))
	case "nested":
		fields := restclient.NestedFields{Array: *arrayField, Count: *countField}
		return printResult(restclient.DecodeNestedArray[any](req, fields, nil))
	case "bytes":
		res := req.DecodeBytes(nil)
		if res.IsError() {
			return res.Error()
		}
		_, err := os.Stdout.Write(res.Data)
		return err
	default:
		return fmt.Errorf("unsupported shape %q", *shape)
	}
}

func printResult[T any](res *restclient.Response[T]) error {
	if res.IsError() {
		return res.Error()
	}
	if s, ok := any(res.Data).(string); ok {
		fmt.Println(s)
		return nil
	}
	out, err := pjson.Marshal(res.Data)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", out)
	return nil
}
