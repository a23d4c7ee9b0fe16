/*
Package msi reads Windows Installer databases (.msi, .msm, .pcp).

A package is a compound file holding a shared string pool, the _Tables and
_Columns system tables, one column-major stream per user table, binary cell
streams and an OLE summary information property set. Open decodes the
container, pool and schema up front; table rows and summary properties are
decoded on first request and memoized.

# Quick Start

	pkg, err := msi.OpenFile("product.msi", nil)
	if err != nil {
	    log.Fatal(err)
	}
	defer pkg.Close()

	info, err := pkg.ProductInfo()
	if err != nil {
	    log.Fatal(err)
	}
	if info != nil {
	    fmt.Println(info.Name, info.Version)
	}

# Tables and Rows

Tables returns the schema in _Tables order. Rows decodes a table:

	rows, err := pkg.Rows("File")
	if types.IsNotFound(err) {
	    // the package has no File table
	}
	for _, r := range rows {
	    name, _ := r.Get("FileName")
	    fmt.Println(name)
	}

Binary cells carry the name of the stream that holds their bytes; fetch them
with ReadBinary.

# Errors

Open is the only call that fails on damage to the container, string pool or
schema. Later calls fail only for the table or stream requested:

	_, err := msi.Open(data, nil)
	switch {
	case errors.Is(err, types.ErrNotPackage):
	    // not a compound file
	case types.IsFormat(err):
	    // damaged package
	}

# Thread Safety

A Package is safe for concurrent use. Concurrent Rows calls for the same table
share one decode.
*/
package msi
