package fetch

import (
	"context"
	"fmt"
	"net"
	"slices"
	"strconv"
)

// Endpoint は、接続可能な (アドレス, ポート) の組です。
type Endpoint struct {
	Addr string
	Port string
}

// String は "addr:port" 形式 (IPv6 は角括弧付き) を返します。
func (e Endpoint) String() string {
	return net.JoinHostPort(e.Addr, e.Port)
}

// Resolver は、ホスト名を順序付きのエンドポイント列に解決します。
type Resolver interface {
	Resolve(ctx context.Context, host, port string) ([]Endpoint, error)
}

// NetResolver は *net.Resolver を使う Resolver の実装です。
type NetResolver struct {
	resolver *net.Resolver
}

// NewNetResolver は NetResolver を生成します。r が nil の場合は net.DefaultResolver を使います。
func NewNetResolver(r *net.Resolver) *NetResolver {
	if r == nil {
		r = net.DefaultResolver
	}
	return &NetResolver{resolver: r}
}

// Resolve はホストを解決し、各アドレスに port を組み合わせます。
// port は数値でなければならず、サービス名データベースは参照しません。
func (r *NetResolver) Resolve(ctx context.Context, host, port string) ([]Endpoint, error) {
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return nil, fmt.Errorf("ポートは数値で指定する必要があります (%q): %w", port, err)
	}

	addrs, err := r.resolver.LookupHost(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("名前解決に失敗しました (host: %s): %w", host, err)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("名前解決に失敗しました (host: %s): %w", host, ErrNoEndpoints)
	}

	endpoints := make([]Endpoint, 0, len(addrs))
	for _, addr := range addrs {
		endpoints = append(endpoints, Endpoint{Addr: addr, Port: port})
	}
	return endpoints, nil
}

// StaticResolver は、ホスト名から固定のエンドポイント列を返す Resolver です。
// ポート引数は無視され、登録済みのエンドポイントがそのまま使われます。
type StaticResolver map[string][]Endpoint

func (s StaticResolver) Resolve(ctx context.Context, host, port string) ([]Endpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	endpoints, ok := s[host]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHostNotFound, host)
	}
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("名前解決に失敗しました (host: %s): %w", host, ErrNoEndpoints)
	}
	return slices.Clone(endpoints), nil
}
