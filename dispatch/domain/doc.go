// Package domain define contratos e tipos de domínio do despachante de requisições:
// modos de escalonamento, registro de requisição, taxonomia de erros, pool de vagas,
// sequenciador e destinos de estatística.
//
// Este pacote não depende de net/http, de sockets nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar regras de negócio
// de detalhes de infraestrutura.
package domain
