// Package application contém os casos de uso do despachante: a política de
// escalonamento simulada, a admissão nas vagas (com timeout opcional), a decisão
// de rate limit e a máquina de estados de uma requisição.
//
// Ele depende apenas do pacote domain e não conhece sockets nem HTTP.
// Ex.: Dispatcher.Handle(ctx, ex) admite, sequencia, simula o trabalho e
// entrega o Record para a camada de transporte responder.
package application
