// Package dispatch é a borda de rede do simulador de escalonamento: aceita
// conexões TCP, separa diretivas de controle de requisições de trabalho e
// traduz o Record do despachante para uma resposta HTTP mínima com JSON.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de rede)
//   - application: política de escalonamento, admissão nas vagas e despachante
//   - infra: implementações concretas (semáforo, contador, token bucket, sinks)
//   - dispatch (este pacote): loop de aceitação + framing + rate limit de aceitação
//
// Fluxo de uma conexão:
//
//  1. Espia (sem consumir) a primeira linha
//  2. Se contém /setmode, aplica o modo e responde {"status":"mode_changed",...}
//     sem tocar nas vagas
//  3. Senão, opcionalmente consulta o rate limit por cliente (429 se bloqueado)
//  4. Entrega a conexão ao Dispatcher na goroutine da própria conexão
//
// Variáveis de ambiente do binário (cmd/server) controlam o comportamento,
// como SLOT_CAPACITY, SCHEDULING_MODE, FIFO_DURATION e BACKLOG.
package dispatch
