// Package aggregator expõe a agregação de posts via HTTP (net/http).
//
// Visão geral (camadas):
//
//   - domain: tipos, erros e contratos (sem dependência de net/http)
//   - application: casos de uso (chamada resiliente, cache de usuários, agregação, delete)
//   - infra: implementações concretas (clientes HTTP upstream, pool, throttle, estatísticas)
//   - aggregator (este pacote): handlers + middlewares + tradução de erros para status
//
// Fluxo de GET /posts:
//
//  1. Valida os query params (authorId, search, limit, offset)
//  2. Chama application.Aggregator
//  3. Traduz ErrNotFound -> 404, ErrServiceUnavailable -> 502, ErrInvalidInput -> 400
//  4. Qualquer outro erro (ou panic) vira 500 genérico e é logado
//
// Variáveis de ambiente do binário gateway (cmd/gateway) controlam o comportamento,
// como UPSTREAM_TIMEOUT_MS, COMMENTS_TIMEOUT_MS, MAX_POSTS e UPSTREAM_CONCURRENCY.
package aggregator
