package refine

// Declarer lets a type supply its own field table instead of having its
// struct tags scanned. The table is read once, when the type's schema is
// first built, so RefineFields must return the same declarations every time.
//
// This suits generated code and types whose tags would not fit in a struct
// tag, such as message templates:
//
//	func (*Employee) RefineFields() []refine.FieldSpec {
//	    return []refine.FieldSpec{
//	        refine.Field("Name",
//	            refine.Tag(refine.TagCapitalize),
//	            refine.Tag(refine.TagNoDigits).WithMessage("The name should not contain any figures or numbers"),
//	        ),
//	    }
//	}
type Declarer interface {
	RefineFields() []FieldSpec
}
