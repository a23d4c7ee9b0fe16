package msi_test

import (
	"fmt"

	"github.com/joshuapare/msikit/internal/testutil"
	"github.com/joshuapare/msikit/pkg/msi"
	"github.com/joshuapare/msikit/pkg/types"
)

// Example lists the tables of a package and prints its properties.
func Example() {
	pkg, err := msi.Open(testutil.PropertyPackage().MustBuild(), nil)
	if err != nil {
		fmt.Println("unreadable package:", err)
		return
	}
	defer pkg.Close()

	tables, _ := pkg.Tables()
	for _, t := range tables {
		fmt.Println(t.Name)
		for _, c := range t.Columns {
			fmt.Printf("  %s %s key=%v nullable=%v\n", c.Name, c.Type, c.PrimaryKey, c.Nullable)
		}
	}

	rows, _ := pkg.Rows("Property")
	for _, r := range rows {
		fmt.Printf("%s = %s\n", r.At(0), r.At(1))
	}
	// Output:
	// Property
	//   Property String(72) key=true nullable=false
	//   Value String(0) key=false nullable=true
	// ProductName = Acme
	// ProductVersion = 1.0.0
}

// ExamplePackage_Rows shows how a missing table is reported.
func ExamplePackage_Rows() {
	pkg, err := msi.Open(testutil.PropertyPackage().MustBuild(), nil)
	if err != nil {
		return
	}
	defer pkg.Close()

	_, err = pkg.Rows("Registry")
	fmt.Println(types.IsNotFound(err))
	// Output: true
}

// ExamplePackage_Select projects rows onto a subset of columns.
func ExamplePackage_Select() {
	pkg, err := msi.Open(testutil.PropertyPackage().MustBuild(), nil)
	if err != nil {
		return
	}
	defer pkg.Close()

	rows, _ := pkg.Select("Property", "Value")
	for _, r := range rows {
		fmt.Println(r.At(0))
	}
	// Output:
	// Acme
	// 1.0.0
}
