package columnar

import (
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/schema"

	"github.com/ajitpratap0/ipws/pkg/errors"
	"github.com/ajitpratap0/ipws/pkg/polytope"
)

const rootName = "schema"

// TierSchema builds the Parquet schema of a tier file
func TierSchema(dimension int, tier polytope.Tier, derived bool) (*schema.GroupNode, error) {
	return intSchema(polytope.Fields(dimension, tier, derived))
}

func intSchema(names []string) (*schema.GroupNode, error) {
	fields := make(schema.FieldList, 0, len(names))
	for _, name := range names {
		fields = append(fields, schema.NewInt32Node(name, parquet.Repetitions.Required, -1))
	}

	root, err := schema.NewGroupNode(rootName, parquet.Repetitions.Required, fields, -1)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "build parquet schema")
	}
	return root, nil
}

// listOfLists builds a required list<list<int32>> column
//
//	required group <name> (LIST) {
//	  repeated group list {
//	    required group element (LIST) {
//	      repeated group list {
//	        required int32 element;
//	      }
//	    }
//	  }
//	}
func listOfLists(name string) (schema.Node, error) {
	inner, err := schema.ListOf(schema.NewInt32Node("element", parquet.Repetitions.Required, -1),
		parquet.Repetitions.Required, -1)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "build inner list")
	}

	outer, err := schema.ListOfWithName(name, inner, parquet.Repetitions.Required, -1)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "build outer list")
	}
	return outer, nil
}
