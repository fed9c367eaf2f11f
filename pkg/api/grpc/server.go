// Package grpcapi implements the scriptx.v1.Interpreter gRPC service.
//
// Requests and responses are google.protobuf.Struct messages, so the
// service needs no generated code: the service descriptor below is
// declared by hand and any client can call it with ClientConn.Invoke.
package grpcapi

import (
	"context"
	"fmt"
	"log"
	"math"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ManitVig/scriptx/pkg/lexer"
	"github.com/ManitVig/scriptx/pkg/parser"
	"github.com/ManitVig/scriptx/pkg/runtime"
	"github.com/ManitVig/scriptx/pkg/types"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "scriptx.v1.Interpreter"

// InterpreterServer is the server API for the Interpreter service.
type InterpreterServer interface {
	// Tokenize takes {source} and returns {tokens: [{type, value, pos}]}.
	Tokenize(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Parse takes {source, strict} and returns {statements: [...]}.
	Parse(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Run takes {source, bindings} and returns {results, bindings}.
	Run(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InterpreterServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Tokenize", Handler: unaryHandler("Tokenize", InterpreterServer.Tokenize)},
		{MethodName: "Parse", Handler: unaryHandler("Parse", InterpreterServer.Parse)},
		{MethodName: "Run", Handler: unaryHandler("Run", InterpreterServer.Run)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "scriptx/v1/interpreter.proto",
}

type unaryMethod func(InterpreterServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryMethod) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(InterpreterServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(InterpreterServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// RegisterInterpreterServer registers srv with a gRPC server.
func RegisterInterpreterServer(s grpc.ServiceRegistrar, srv InterpreterServer) {
	s.RegisterService(&serviceDesc, srv)
}

// Server implements the Interpreter service.
type Server struct {
	opts []parser.Option
	grpc *grpc.Server
}

// New creates a new gRPC server. Sources are parsed with opts.
func New(opts ...parser.Option) *Server {
	srv := &Server{opts: opts}

	gs := grpc.NewServer(grpc.UnaryInterceptor(logFailures))
	RegisterInterpreterServer(gs, srv)
	srv.grpc = gs

	return srv
}

// Serve starts listening on the given address and serves gRPC requests.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	return s.grpc.Serve(lis)
}

// GracefulStop gracefully stops the gRPC server.
func (s *Server) GracefulStop() {
	s.grpc.GracefulStop()
}

func logFailures(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	resp, err := handler(ctx, req)
	if err != nil && status.Code(err) != codes.InvalidArgument {
		log.Printf("gRPC %s failed: %v", info.FullMethod, err)
	}
	return resp, err
}

// --- Interpreter Service ---

func (s *Server) Tokenize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	source, err := stringField(req, "source")
	if err != nil {
		return nil, err
	}

	tokens := lexer.New(source).Tokenize()
	items := make([]interface{}, len(tokens))
	for i, tok := range tokens {
		items[i] = map[string]interface{}{
			"type":  tok.Type.String(),
			"value": tok.Value,
			"pos":   tok.Pos,
		}
	}

	return newStruct(map[string]interface{}{"tokens": items})
}

func (s *Server) Parse(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	source, err := stringField(req, "source")
	if err != nil {
		return nil, err
	}

	opts := s.opts
	if v, ok := req.GetFields()["strict"]; ok && v.GetBoolValue() {
		opts = append(append([]parser.Option{}, s.opts...), parser.WithStrictStatements())
	}

	prog, err := parser.ParseSource(source, opts...)
	if err != nil {
		return nil, toStatus(err)
	}

	statements := make([]interface{}, len(prog.Statements))
	for i, stmt := range prog.Statements {
		statements[i] = stmt.String()
	}

	return newStruct(map[string]interface{}{"statements": statements})
}

func (s *Server) Run(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	source, err := stringField(req, "source")
	if err != nil {
		return nil, err
	}

	scope, err := decodeBindings(req.GetFields()["bindings"])
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid bindings: %v", err)
	}

	prog, err := parser.ParseSource(source, s.opts...)
	if err != nil {
		return nil, toStatus(err)
	}
	result, err := runtime.NewEngine(prog).Run(scope)
	if err != nil {
		return nil, toStatus(err)
	}

	results := make([]interface{}, len(result.Statements))
	for i, r := range result.Statements {
		results[i] = map[string]interface{}{
			"name":  string(r.Name),
			"type":  r.Value.Type().String(),
			"value": encodeValue(r.Value),
		}
	}
	bindings := make(map[string]interface{}, result.Bindings.Len())
	for _, name := range result.Bindings.Names() {
		v, _ := result.Bindings.Lookup(name)
		bindings[string(name)] = encodeValue(v)
	}

	return newStruct(map[string]interface{}{
		"results":  results,
		"bindings": bindings,
	})
}

// --- Conversion Helpers ---

func stringField(req *structpb.Struct, name string) (string, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return "", nil
	}
	if _, isString := v.GetKind().(*structpb.Value_StringValue); !isString {
		return "", status.Errorf(codes.InvalidArgument, "%s must be a string", name)
	}
	return v.GetStringValue(), nil
}

// decodeBindings converts a Struct of bindings into a scope. Strings are
// literal text, integral numbers that fit in 32 bits become integers and
// other numbers become floats.
func decodeBindings(v *structpb.Value) (*runtime.Scope, error) {
	scope := runtime.NewScope()
	if v == nil {
		return scope, nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return scope, nil
	}
	st := v.GetStructValue()
	if st == nil {
		return nil, fmt.Errorf("bindings must be a struct")
	}

	for key, field := range st.GetFields() {
		name, err := runtime.ValidateName(key)
		if err != nil {
			return nil, err
		}
		var val types.Value
		switch k := field.GetKind().(type) {
		case *structpb.Value_BoolValue:
			val = types.NewBool(k.BoolValue)
		case *structpb.Value_NumberValue:
			n := k.NumberValue
			if n == math.Trunc(n) && n >= math.MinInt32 && n <= math.MaxInt32 {
				val = types.NewInt(int32(n))
			} else {
				val = types.NewFloat(float32(n))
			}
		case *structpb.Value_StringValue:
			val, err = types.ParseLiteral(k.StringValue)
			if err != nil {
				return nil, fmt.Errorf("binding %s: %w", name, err)
			}
		default:
			return nil, fmt.Errorf("binding %s: unsupported value kind %T", name, k)
		}
		scope.Set(name, val)
	}
	return scope, nil
}

func encodeValue(v types.Value) interface{} {
	switch v.Type() {
	case types.TypeInt:
		return int64(v.AsInt())
	case types.TypeFloat:
		return float64(v.AsFloat())
	default:
		return v.AsBool()
	}
}

func newStruct(m map[string]interface{}) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	return st, nil
}

// toStatus maps scriptx language errors to InvalidArgument.
func toStatus(err error) error {
	if _, ok := types.KindOf(err); ok {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}
