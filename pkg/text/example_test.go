package text_test

import (
	"fmt"

	"github.com/walteh/s3rename/pkg/text"
)

func ExampleParse() {
	expr, err := text.Parse(`s/(\w+)\.jpeg$/\1.jpg/`)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println(expr.Replace("photos/cat.jpeg"))
	fmt.Println(expr.Replace("photos/dog.png"))

	// Output:
	// photos/cat.jpg
	// photos/dog.png
}
