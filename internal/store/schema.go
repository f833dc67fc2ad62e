package store

const schema = `
CREATE TABLE IF NOT EXISTS contas (
    empresa       INTEGER NOT NULL,
    conta         INTEGER NOT NULL,
    classificacao TEXT,
    descricao     TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (empresa, conta)
);

CREATE TABLE IF NOT EXISTS planos (
    id   INTEGER PRIMARY KEY,
    nome TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS plano_itens (
    plano_id      INTEGER NOT NULL REFERENCES planos(id) ON DELETE CASCADE,
    seq           INTEGER NOT NULL,
    cfop          TEXT NOT NULL,
    conta_debito  INTEGER,
    conta_credito INTEGER,
    contabiliza   INTEGER NOT NULL DEFAULT 1,
    retido        INTEGER NOT NULL DEFAULT 0,
    conta_inss    INTEGER,
    conta_issqn   INTEGER,
    conta_irpj    INTEGER,
    conta_csll    INTEGER,
    conta_irrf    INTEGER,
    conta_pis     INTEGER,
    conta_cofins  INTEGER,
    PRIMARY KEY (plano_id, seq)
);

CREATE TABLE IF NOT EXISTS documentos_fiscais (
    empresa        INTEGER NOT NULL,
    tipo           TEXT NOT NULL CHECK (tipo IN ('ENTRADA', 'SAIDA')),
    chave          INTEGER NOT NULL,
    numero_nf      INTEGER,
    data           TEXT NOT NULL,
    valor_contabil TEXT,
    PRIMARY KEY (empresa, tipo, chave)
);

CREATE INDEX IF NOT EXISTS idx_documentos_periodo
    ON documentos_fiscais(empresa, tipo, data);

CREATE TABLE IF NOT EXISTS cfop_linhas (
    empresa         INTEGER NOT NULL,
    tipo            TEXT NOT NULL,
    chave_documento INTEGER NOT NULL,
    seq             INTEGER NOT NULL,
    cfop            INTEGER,
    valor           TEXT,
    PRIMARY KEY (empresa, tipo, chave_documento, seq),
    FOREIGN KEY (empresa, tipo, chave_documento)
        REFERENCES documentos_fiscais(empresa, tipo, chave) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS lancamentos_contabeis (
    empresa       INTEGER NOT NULL,
    chave         INTEGER NOT NULL,
    data          TEXT NOT NULL,
    conta_debito  INTEGER,
    conta_credito INTEGER,
    valor         TEXT,
    chave_origem  TEXT NOT NULL DEFAULT '',
    historico     TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (empresa, chave)
);

CREATE INDEX IF NOT EXISTS idx_lancamentos_periodo
    ON lancamentos_contabeis(empresa, data);
`
