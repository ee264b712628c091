package semantic

// builtin describes a well-known framework type seeded into every universe.
type builtin struct {
	name       string
	base       string
	interfaces []string
	arity      int
	iface      bool
}

const (
	objectType          = "System.Object"
	valueType           = "System.ValueType"
	exceptionType       = "System.Exception"
	systemExceptionType = "System.SystemException"
)

// builtins is ordered so that every base and interface precedes its users.
var builtins = []builtin{
	{name: objectType},
	{name: valueType, base: objectType},
	{name: "System.Runtime.Serialization.ISerializable", iface: true},
	{name: "System.IDisposable", iface: true},
	{name: "System.IComparable", iface: true},
	{name: "System.Collections.IEnumerable", iface: true},
	{name: "System.IEquatable`1", arity: 1, iface: true},
	{name: "System.IComparable`1", arity: 1, iface: true},
	{name: "System.Collections.Generic.IEnumerable`1", arity: 1, iface: true,
		interfaces: []string{"System.Collections.IEnumerable"}},
	{name: "System.Collections.Generic.ICollection`1", arity: 1, iface: true,
		interfaces: []string{"System.Collections.Generic.IEnumerable`1"}},
	{name: "System.Collections.Generic.IList`1", arity: 1, iface: true,
		interfaces: []string{"System.Collections.Generic.ICollection`1"}},
	{name: "System.Collections.Generic.List`1", arity: 1, base: objectType,
		interfaces: []string{"System.Collections.Generic.IList`1"}},

	{name: "System.String", base: objectType,
		interfaces: []string{"System.Collections.IEnumerable", "System.IComparable"}},
	{name: "System.Boolean", base: valueType, interfaces: []string{"System.IComparable"}},
	{name: "System.Char", base: valueType, interfaces: []string{"System.IComparable"}},
	{name: "System.Byte", base: valueType, interfaces: []string{"System.IComparable"}},
	{name: "System.Int16", base: valueType, interfaces: []string{"System.IComparable"}},
	{name: "System.Int32", base: valueType, interfaces: []string{"System.IComparable"}},
	{name: "System.Int64", base: valueType, interfaces: []string{"System.IComparable"}},
	{name: "System.UInt32", base: valueType, interfaces: []string{"System.IComparable"}},
	{name: "System.UInt64", base: valueType, interfaces: []string{"System.IComparable"}},
	{name: "System.Single", base: valueType, interfaces: []string{"System.IComparable"}},
	{name: "System.Double", base: valueType, interfaces: []string{"System.IComparable"}},
	{name: "System.Decimal", base: valueType, interfaces: []string{"System.IComparable"}},

	{name: exceptionType, base: objectType,
		interfaces: []string{"System.Runtime.Serialization.ISerializable"}},
	{name: systemExceptionType, base: exceptionType},
	{name: "System.ApplicationException", base: exceptionType},
	{name: "System.AggregateException", base: exceptionType},
	{name: "System.ArgumentException", base: systemExceptionType},
	{name: "System.ArgumentNullException", base: "System.ArgumentException"},
	{name: "System.ArgumentOutOfRangeException", base: "System.ArgumentException"},
	{name: "System.InvalidOperationException", base: systemExceptionType},
	{name: "System.ObjectDisposedException", base: "System.InvalidOperationException"},
	{name: "System.NotSupportedException", base: systemExceptionType},
	{name: "System.NotImplementedException", base: systemExceptionType},
	{name: "System.NullReferenceException", base: systemExceptionType},
	{name: "System.IndexOutOfRangeException", base: systemExceptionType},
	{name: "System.InvalidCastException", base: systemExceptionType},
	{name: "System.FormatException", base: systemExceptionType},
	{name: "System.ArithmeticException", base: systemExceptionType},
	{name: "System.DivideByZeroException", base: "System.ArithmeticException"},
	{name: "System.OverflowException", base: "System.ArithmeticException"},
	{name: "System.TimeoutException", base: systemExceptionType},
	{name: "System.UnauthorizedAccessException", base: systemExceptionType},
	{name: "System.OperationCanceledException", base: systemExceptionType},
	{name: "System.Threading.Tasks.TaskCanceledException", base: "System.OperationCanceledException"},
	{name: "System.Collections.Generic.KeyNotFoundException", base: systemExceptionType},
	{name: "System.IO.IOException", base: systemExceptionType},
	{name: "System.IO.FileNotFoundException", base: "System.IO.IOException"},
	{name: "System.IO.DirectoryNotFoundException", base: "System.IO.IOException"},
	{name: "System.IO.EndOfStreamException", base: "System.IO.IOException"},
}

// predefined maps C# keywords to framework type names.
var predefined = map[string]string{
	"object":  objectType,
	"string":  "System.String",
	"bool":    "System.Boolean",
	"char":    "System.Char",
	"byte":    "System.Byte",
	"short":   "System.Int16",
	"int":     "System.Int32",
	"long":    "System.Int64",
	"uint":    "System.UInt32",
	"ulong":   "System.UInt64",
	"float":   "System.Single",
	"double":  "System.Double",
	"decimal": "System.Decimal",
}
